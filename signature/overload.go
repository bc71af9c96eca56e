package signature

import (
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/source"
	"github.com/shale-sh/shale/value"
)

// SelectOverload picks the signature to bind for the given input type.
// Ranking: an overload whose declared input equals the runtime type wins;
// then the first overload that structurally accepts it (table taking
// list<record>, number taking int); then an any-typed catch-all. When no
// overload accepts the input the error lists the types that would,
// blamed at the call site.
func SelectOverload(sigs []*Signature, inputType value.Type, callTag source.Tag) (*Signature, error) {
	var structural, fallback *Signature
	for _, sig := range sigs {
		switch {
		case sig.InputType.Equal(inputType):
			return sig, nil
		case sig.InputType.IsAny():
			if fallback == nil {
				fallback = sig
			}
		case sig.InputType.Accepts(inputType):
			if structural == nil {
				structural = sig
			}
		}
	}
	if structural != nil {
		return structural, nil
	}
	if fallback != nil {
		return fallback, nil
	}
	name := ""
	accepted := make([]string, 0, len(sigs))
	for _, sig := range sigs {
		name = sig.Name
		accepted = append(accepted, sig.InputType.String())
	}
	return nil, errors.InputTypeMismatch(name, inputType.String(), accepted, callTag)
}
