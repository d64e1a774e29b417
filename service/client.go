package service

import (
	"context"

	"github.com/golang/protobuf/ptypes/empty"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client of the verification service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Start verification steps on the property. A negative maximum means no limit.
// Returns the id of the run.
func (c *Client) Step(ctx context.Context, prop string, maxRefinementsLimit int, opts ...grpc.CallOption) (uuid.UUID, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		propertyField:  prop,
		maxRefinements: maxRefinementsLimit,
	})
	if err != nil {
		return uuid.Nil, err
	}
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, stepMethod, in, out, opts...); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(out.GetValue())
}

func (c *Client) Status(ctx context.Context, opts ...grpc.CallOption) (Report, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, statusMethod, new(empty.Empty), out, opts...); err != nil {
		return Report{}, err
	}
	return reportFromStruct(out), nil
}

func (c *Client) Reset(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, resetMethod, new(empty.Empty), new(empty.Empty), opts...)
}
