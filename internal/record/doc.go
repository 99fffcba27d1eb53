// Package record provides the insertion-ordered Record used as the
// dialect-neutral row representation across all backends.
//
// A Record is created empty or decoded from a wire payload, mutated while a
// query result is assembled or a partial update is merged, and discarded
// after conversion to or from a strongly-typed entity.
//
// Records never reorder fields. Overwriting a field keeps its position;
// deleting a field closes the gap without disturbing the others.
package record
