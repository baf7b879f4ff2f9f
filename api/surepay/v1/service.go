package surepayv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "surepay.v1.SurePayService"

// Full method names, as seen by interceptors.
const (
	SurePayService_Register_FullMethodName          = "/" + ServiceName + "/Register"
	SurePayService_VerifyEmail_FullMethodName       = "/" + ServiceName + "/VerifyEmail"
	SurePayService_Login_FullMethodName             = "/" + ServiceName + "/Login"
	SurePayService_Logout_FullMethodName            = "/" + ServiceName + "/Logout"
	SurePayService_GetProfile_FullMethodName        = "/" + ServiceName + "/GetProfile"
	SurePayService_CompleteGuide_FullMethodName     = "/" + ServiceName + "/CompleteGuide"
	SurePayService_CreateBooking_FullMethodName     = "/" + ServiceName + "/CreateBooking"
	SurePayService_ListBookings_FullMethodName      = "/" + ServiceName + "/ListBookings"
	SurePayService_TransitionBooking_FullMethodName = "/" + ServiceName + "/TransitionBooking"
	SurePayService_CreateRequest_FullMethodName     = "/" + ServiceName + "/CreateRequest"
	SurePayService_ListRequests_FullMethodName      = "/" + ServiceName + "/ListRequests"
	SurePayService_TransitionRequest_FullMethodName = "/" + ServiceName + "/TransitionRequest"
	SurePayService_SendMessage_FullMethodName       = "/" + ServiceName + "/SendMessage"
	SurePayService_SubscribeThread_FullMethodName   = "/" + ServiceName + "/SubscribeThread"
	SurePayService_ListActiveThreads_FullMethodName = "/" + ServiceName + "/ListActiveThreads"
	SurePayService_UploadImage_FullMethodName       = "/" + ServiceName + "/UploadImage"
	SurePayService_ListTransactions_FullMethodName  = "/" + ServiceName + "/ListTransactions"
)

// SurePayServiceServer is the server API for SurePayService.
type SurePayServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	VerifyEmail(context.Context, *VerifyEmailRequest) (*VerifyEmailResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*Profile, error)
	CompleteGuide(context.Context, *CompleteGuideRequest) (*CompleteGuideResponse, error)
	CreateBooking(context.Context, *CreateBookingRequest) (*MutationResponse, error)
	ListBookings(context.Context, *ListBookingsRequest) (*ListBookingsResponse, error)
	TransitionBooking(context.Context, *TransitionRequest) (*MutationResponse, error)
	CreateRequest(context.Context, *CreateRequestRequest) (*MutationResponse, error)
	ListRequests(context.Context, *ListRequestsRequest) (*ListRequestsResponse, error)
	TransitionRequest(context.Context, *TransitionRequest) (*MutationResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	SubscribeThread(*SubscribeThreadRequest, grpc.ServerStreamingServer[ThreadSnapshot]) error
	ListActiveThreads(context.Context, *ListActiveThreadsRequest) (*ListActiveThreadsResponse, error)
	UploadImage(context.Context, *UploadImageRequest) (*UploadImageResponse, error)
	ListTransactions(context.Context, *ListTransactionsRequest) (*ListTransactionsResponse, error)
	mustEmbedUnimplementedSurePayServiceServer()
}

// UnimplementedSurePayServiceServer must be embedded by implementations.
type UnimplementedSurePayServiceServer struct{}

func (UnimplementedSurePayServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedSurePayServiceServer) VerifyEmail(context.Context, *VerifyEmailRequest) (*VerifyEmailResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method VerifyEmail not implemented")
}
func (UnimplementedSurePayServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedSurePayServiceServer) Logout(context.Context, *LogoutRequest) (*LogoutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}
func (UnimplementedSurePayServiceServer) GetProfile(context.Context, *GetProfileRequest) (*Profile, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProfile not implemented")
}
func (UnimplementedSurePayServiceServer) CompleteGuide(context.Context, *CompleteGuideRequest) (*CompleteGuideResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CompleteGuide not implemented")
}
func (UnimplementedSurePayServiceServer) CreateBooking(context.Context, *CreateBookingRequest) (*MutationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateBooking not implemented")
}
func (UnimplementedSurePayServiceServer) ListBookings(context.Context, *ListBookingsRequest) (*ListBookingsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListBookings not implemented")
}
func (UnimplementedSurePayServiceServer) TransitionBooking(context.Context, *TransitionRequest) (*MutationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method TransitionBooking not implemented")
}
func (UnimplementedSurePayServiceServer) CreateRequest(context.Context, *CreateRequestRequest) (*MutationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateRequest not implemented")
}
func (UnimplementedSurePayServiceServer) ListRequests(context.Context, *ListRequestsRequest) (*ListRequestsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListRequests not implemented")
}
func (UnimplementedSurePayServiceServer) TransitionRequest(context.Context, *TransitionRequest) (*MutationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method TransitionRequest not implemented")
}
func (UnimplementedSurePayServiceServer) SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SendMessage not implemented")
}
func (UnimplementedSurePayServiceServer) SubscribeThread(*SubscribeThreadRequest, grpc.ServerStreamingServer[ThreadSnapshot]) error {
	return status.Error(codes.Unimplemented, "method SubscribeThread not implemented")
}
func (UnimplementedSurePayServiceServer) ListActiveThreads(context.Context, *ListActiveThreadsRequest) (*ListActiveThreadsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListActiveThreads not implemented")
}
func (UnimplementedSurePayServiceServer) UploadImage(context.Context, *UploadImageRequest) (*UploadImageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UploadImage not implemented")
}
func (UnimplementedSurePayServiceServer) ListTransactions(context.Context, *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTransactions not implemented")
}
func (UnimplementedSurePayServiceServer) mustEmbedUnimplementedSurePayServiceServer() {}

// RegisterSurePayServiceServer registers srv on s.
func RegisterSurePayServiceServer(s grpc.ServiceRegistrar, srv SurePayServiceServer) {
	s.RegisterService(&SurePayService_ServiceDesc, srv)
}

// unary builds the method descriptor of a unary RPC.
func unary[Req, Res any](name string, call func(SurePayServiceServer, context.Context, *Req) (*Res, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(SurePayServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

func subscribeThreadHandler(srv any, stream grpc.ServerStream) error {
	in := new(SubscribeThreadRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(SurePayServiceServer).SubscribeThread(in, &grpc.GenericServerStream[SubscribeThreadRequest, ThreadSnapshot]{ServerStream: stream})
}

// SurePayService_ServiceDesc is the grpc.ServiceDesc for SurePayService.
var SurePayService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SurePayServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", SurePayServiceServer.Register),
		unary("VerifyEmail", SurePayServiceServer.VerifyEmail),
		unary("Login", SurePayServiceServer.Login),
		unary("Logout", SurePayServiceServer.Logout),
		unary("GetProfile", SurePayServiceServer.GetProfile),
		unary("CompleteGuide", SurePayServiceServer.CompleteGuide),
		unary("CreateBooking", SurePayServiceServer.CreateBooking),
		unary("ListBookings", SurePayServiceServer.ListBookings),
		unary("TransitionBooking", SurePayServiceServer.TransitionBooking),
		unary("CreateRequest", SurePayServiceServer.CreateRequest),
		unary("ListRequests", SurePayServiceServer.ListRequests),
		unary("TransitionRequest", SurePayServiceServer.TransitionRequest),
		unary("SendMessage", SurePayServiceServer.SendMessage),
		unary("ListActiveThreads", SurePayServiceServer.ListActiveThreads),
		unary("UploadImage", SurePayServiceServer.UploadImage),
		unary("ListTransactions", SurePayServiceServer.ListTransactions),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SubscribeThread",
			Handler:       subscribeThreadHandler,
			ServerStreams: true,
		},
	},
	Metadata: "surepay/v1/surepay.proto",
}
