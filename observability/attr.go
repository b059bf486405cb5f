package observability

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/sss-org/sss-engine/types"
)

const CommandKey attribute.Key = "command"
const MintKey attribute.Key = "mint"
const KindKey attribute.Key = "kind"

func Command(cmdType string) attribute.KeyValue {
	return CommandKey.String(cmdType)
}

func Mint(id types.Identity) attribute.KeyValue {
	return MintKey.String(id.String())
}

/*
Kind returns attribute with the error kind of the err, empty string when
err is nil.
*/
func Kind(err error) attribute.KeyValue {
	return KindKey.String(string(types.KindOf(err)))
}

/*
ErrStatus returns attribute named "status" with value "ok" if the param
err is nil and "err" when it is not.
*/
func ErrStatus(err error) attribute.KeyValue {
	status := "ok"
	if err != nil {
		status = "err"
	}
	return attribute.String("status", status)
}
