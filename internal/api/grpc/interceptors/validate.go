package interceptors

import (
	"context"
	"errors"

	"notes-store/internal/api/dto"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// ValidateUnaryInterceptor валидирует входящие запросы по тегам validate (go-playground/validator).
// Сообщения protobuf (emptypb) правил не имеют и пропускаются.
// Если валидация не пройдена, возвращается ошибка с кодом InvalidArgument и деталями BadRequest
func ValidateUnaryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if _, ok := req.(proto.Message); !ok && req != nil {
		if err := dto.Validate(req); err != nil {
			var verr *dto.ValidationError
			if errors.As(err, &verr) {
				return nil, ValidationStatus(verr).Err()
			}
			return nil, status.Errorf(codes.InvalidArgument, "validation failed: %v", err)
		}
	}

	return handler(ctx, req)
}

// ValidationStatus статус InvalidArgument со списком нарушений в BadRequest
func ValidationStatus(verr *dto.ValidationError) *status.Status {
	br := &errdetails.BadRequest{}
	for _, v := range verr.Violations {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       v.Field,
			Description: v.Description,
		})
	}

	st := status.New(codes.InvalidArgument, "validation failed: "+verr.Error())
	if withBR, err := st.WithDetails(br); err == nil {
		return withBR
	}
	return st
}
