package document

import (
	"github.com/roach88/vantage/internal/expr"
	"github.com/roach88/vantage/internal/jsonwire"
	"github.com/roach88/vantage/internal/record"
)

// Encode converts an expression back to document form.
//
// Scalars encode as {scalar: v} and nested expressions recursively.
// Deferred parameters have no data to encode and become {deferred: null};
// such documents do not load back.
func Encode(e expr.Expression[jsonwire.Value]) jsonwire.ObjectValue {
	params := make(jsonwire.ArrayValue, 0, e.Len())
	for _, p := range e.Params() {
		params = append(params, encodeParam(p))
	}
	return jsonwire.NewObject(
		record.P[jsonwire.Value]("template", jsonwire.StringValue(e.Template())),
		record.P[jsonwire.Value]("params", params),
	)
}

func encodeParam(p expr.Param[jsonwire.Value]) jsonwire.Value {
	switch p.Kind() {
	case expr.KindNested:
		nested, _ := p.AsNested()
		return jsonwire.NewObject(record.P[jsonwire.Value]("nested", Encode(nested)))
	case expr.KindDeferred:
		return jsonwire.NewObject(record.P[jsonwire.Value]("deferred", jsonwire.NullValue{}))
	default:
		v, _ := p.AsScalar()
		if v == nil {
			v = jsonwire.NullValue{}
		}
		return jsonwire.NewObject(record.P("scalar", v))
	}
}
