package datasource

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/roach88/vantage/internal/engine"
	"github.com/roach88/vantage/internal/expr"
	"github.com/roach88/vantage/internal/jsonwire"
	"github.com/roach88/vantage/internal/record"
)

// DomainQuery prefixes query fingerprints.
// The version suffix allows the algorithm to change without collisions.
const DomainQuery = "vantage/query/v1"

// ErrUnresolved is returned when a fingerprint is requested for an
// expression that still holds Deferred parameters.
var ErrUnresolved = errors.New("datasource: expression has unresolved deferred parameters")

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns a stable identity for a query.
//
// Nested parameters are flattened first, so two trees that flatten to
// the same template and parameters share a fingerprint. Deferred
// parameters must be resolved beforehand.
func Fingerprint(e expr.Expression[jsonwire.Value]) (string, error) {
	flat := engine.Flatten(e)
	if flat.HasDeferred() {
		return "", ErrUnresolved
	}

	params := make(jsonwire.ArrayValue, 0, flat.Len())
	for _, p := range flat.Params() {
		v, _ := p.AsScalar()
		if v == nil {
			v = jsonwire.NullValue{}
		}
		params = append(params, v)
	}

	obj := jsonwire.NewObject(
		record.P[jsonwire.Value]("template", jsonwire.StringValue(flat.Template())),
		record.P[jsonwire.Value]("params", params),
	)
	canonical, err := jsonwire.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}
