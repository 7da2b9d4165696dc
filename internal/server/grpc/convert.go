package grpc

import (
	"strconv"

	"github.com/dmitrijs2005/chatandpay/internal/common"
	"github.com/dmitrijs2005/chatandpay/internal/server/models"
	"google.golang.org/protobuf/types/known/structpb"
)

func stringField(in *structpb.Struct, key string) string {
	return in.GetFields()[key].GetStringValue()
}

// optionalString is nil when key is absent or null.
func optionalString(in *structpb.Struct, key string) *string {
	v, ok := in.GetFields()[key]
	if !ok {
		return nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil
	}
	s := v.GetStringValue()
	return &s
}

// idField accepts the id as a decimal string or a number.
func idField(in *structpb.Struct, key string) (int64, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return 0, common.Validation(key + " is required")
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		id, err := strconv.ParseInt(k.StringValue, 10, 64)
		if err != nil {
			return 0, common.Validation(key + " must be an integer")
		}
		return id, nil
	case *structpb.Value_NumberValue:
		id := int64(k.NumberValue)
		if float64(id) != k.NumberValue {
			return 0, common.Validation(key + " must be an integer")
		}
		return id, nil
	default:
		return 0, common.Validation(key + " must be an integer")
	}
}

// userValue renders a user without its password digest. The id is a
// decimal string so it survives the float64 number type.
func userValue(u *models.User) *structpb.Value {
	handle := structpb.NewNullValue()
	if u.LoginHandle != nil {
		handle = structpb.NewStringValue(*u.LoginHandle)
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"id":           structpb.NewStringValue(strconv.FormatInt(u.ID, 10)),
		"name":         structpb.NewStringValue(u.Name),
		"login_handle": handle,
		"phone":        structpb.NewStringValue(u.Phone),
		"role":         structpb.NewStringValue(u.Role),
	}})
}

func response(fields map[string]*structpb.Value) *structpb.Struct {
	return &structpb.Struct{Fields: fields}
}
