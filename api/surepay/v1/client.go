package surepayv1

import (
	"context"

	"google.golang.org/grpc"
)

// SurePayServiceClient calls SurePayService with the JSON codec.
type SurePayServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSurePayServiceClient(cc grpc.ClientConnInterface) *SurePayServiceClient {
	return &SurePayServiceClient{cc: cc}
}

func invoke[Res any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Res, error) {
	out := new(Res)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SurePayServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, SurePayService_Register_FullMethodName, in, opts)
}

func (c *SurePayServiceClient) VerifyEmail(ctx context.Context, in *VerifyEmailRequest, opts ...grpc.CallOption) (*VerifyEmailResponse, error) {
	return invoke[VerifyEmailResponse](ctx, c.cc, SurePayService_VerifyEmail_FullMethodName, in, opts)
}

func (c *SurePayServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, SurePayService_Login_FullMethodName, in, opts)
}

func (c *SurePayServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, SurePayService_Logout_FullMethodName, in, opts)
}

func (c *SurePayServiceClient) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*Profile, error) {
	return invoke[Profile](ctx, c.cc, SurePayService_GetProfile_FullMethodName, in, opts)
}

func (c *SurePayServiceClient) CompleteGuide(ctx context.Context, in *CompleteGuideRequest, opts ...grpc.CallOption) (*CompleteGuideResponse, error) {
	return invoke[CompleteGuideResponse](ctx, c.cc, SurePayService_CompleteGuide_FullMethodName, in, opts)
}

func (c *SurePayServiceClient) CreateBooking(ctx context.Context, in *CreateBookingRequest, opts ...grpc.CallOption) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, SurePayService_CreateBooking_FullMethodName, in, opts)
}

func (c *SurePayServiceClient) ListBookings(ctx context.Context, in *ListBookingsRequest, opts ...grpc.CallOption) (*ListBookingsResponse, error) {
	return invoke[ListBookingsResponse](ctx, c.cc, SurePayService_ListBookings_FullMethodName, in, opts)
}

func (c *SurePayServiceClient) TransitionBooking(ctx context.Context, in *TransitionRequest, opts ...grpc.CallOption) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, SurePayService_TransitionBooking_FullMethodName, in, opts)
}

func (c *SurePayServiceClient) CreateRequest(ctx context.Context, in *CreateRequestRequest, opts ...grpc.CallOption) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, SurePayService_CreateRequest_FullMethodName, in, opts)
}

func (c *SurePayServiceClient) ListRequests(ctx context.Context, in *ListRequestsRequest, opts ...grpc.CallOption) (*ListRequestsResponse, error) {
	return invoke[ListRequestsResponse](ctx, c.cc, SurePayService_ListRequests_FullMethodName, in, opts)
}

func (c *SurePayServiceClient) TransitionRequest(ctx context.Context, in *TransitionRequest, opts ...grpc.CallOption) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, SurePayService_TransitionRequest_FullMethodName, in, opts)
}

func (c *SurePayServiceClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	return invoke[SendMessageResponse](ctx, c.cc, SurePayService_SendMessage_FullMethodName, in, opts)
}

func (c *SurePayServiceClient) ListActiveThreads(ctx context.Context, in *ListActiveThreadsRequest, opts ...grpc.CallOption) (*ListActiveThreadsResponse, error) {
	return invoke[ListActiveThreadsResponse](ctx, c.cc, SurePayService_ListActiveThreads_FullMethodName, in, opts)
}

func (c *SurePayServiceClient) UploadImage(ctx context.Context, in *UploadImageRequest, opts ...grpc.CallOption) (*UploadImageResponse, error) {
	return invoke[UploadImageResponse](ctx, c.cc, SurePayService_UploadImage_FullMethodName, in, opts)
}

func (c *SurePayServiceClient) ListTransactions(ctx context.Context, in *ListTransactionsRequest, opts ...grpc.CallOption) (*ListTransactionsResponse, error) {
	return invoke[ListTransactionsResponse](ctx, c.cc, SurePayService_ListTransactions_FullMethodName, in, opts)
}

// SubscribeThread opens the snapshot stream of a thread.
func (c *SurePayServiceClient) SubscribeThread(ctx context.Context, in *SubscribeThreadRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[ThreadSnapshot], error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &SurePayService_ServiceDesc.Streams[0], SurePayService_SubscribeThread_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[SubscribeThreadRequest, ThreadSnapshot]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
