package main

import (
	"context"

	v1 "github.com/PaulBabatuyi/surepay-gRPC/api/surepay/v1"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/data"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/lifecycle"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const msgScreenshotUpload = "Failed to upload the screenshot. Nothing was saved."

func mutation(r lifecycle.Result) *v1.MutationResponse {
	return &v1.MutationResponse{Success: r.Success, Id: r.ID, Msg: r.Msg}
}

// owner returns the user a new record belongs to: users always file for
// themselves, admins may file for someone else.
func owner(c *caller, requested string) string {
	if c.isAdmin() && requested != "" {
		return requested
	}
	return c.uid()
}

func (s *Server) CreateBooking(ctx context.Context, req *v1.CreateBookingRequest) (*v1.MutationResponse, error) {
	c, ok := callerFrom(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing session")
	}
	doc := bookingFromWire(req.Booking)
	doc.UserID = owner(c, doc.UserID)

	// validate before uploading so a rejected form leaves no blob behind
	if res := s.bookings.Validate(doc); !res.Success {
		return mutation(res), nil
	}
	if len(req.ScreenshotImage) > 0 {
		url, err := s.upload(ctx, req.ScreenshotName, req.ScreenshotImage)
		if err != nil {
			return &v1.MutationResponse{Msg: msgScreenshotUpload}, nil
		}
		doc.Screenshot = url
	}
	return mutation(s.bookings.Create(ctx, doc)), nil
}

// ListBookings lists the caller's bookings, or every booking for admins.
func (s *Server) ListBookings(ctx context.Context, req *v1.ListBookingsRequest) (*v1.ListBookingsResponse, error) {
	c, ok := callerFrom(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing session")
	}

	var listing lifecycle.Listing[*data.Booking]
	switch {
	case req.Mine:
		listing = s.bookings.ListMine(ctx, c.uid())
	case c.isAdmin():
		listing = s.bookings.ListAll(ctx)
	default:
		return nil, status.Errorf(codes.PermissionDenied, "admin only")
	}

	out := make([]*v1.Booking, 0, len(listing.Records))
	for _, b := range listing.Records {
		out = append(out, toBooking(b))
	}
	return &v1.ListBookingsResponse{Success: listing.Success, Bookings: out, Msg: listing.Msg}, nil
}

func (s *Server) TransitionBooking(ctx context.Context, req *v1.TransitionRequest) (*v1.MutationResponse, error) {
	return mutation(s.bookings.Transition(ctx, req.Id, req.Status)), nil
}

func (s *Server) CreateRequest(ctx context.Context, req *v1.CreateRequestRequest) (*v1.MutationResponse, error) {
	c, ok := callerFrom(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing session")
	}
	doc := requestFromWire(req.Request)
	doc.UserID = owner(c, doc.UserID)

	if res := s.requests.Validate(doc); !res.Success {
		return mutation(res), nil
	}
	if len(req.ScreenshotImage) > 0 {
		url, err := s.upload(ctx, req.ScreenshotName, req.ScreenshotImage)
		if err != nil {
			return &v1.MutationResponse{Msg: msgScreenshotUpload}, nil
		}
		doc.Screenshot = url
	}
	return mutation(s.requests.Create(ctx, doc)), nil
}

// ListRequests lists the caller's requests, or every request for admins.
func (s *Server) ListRequests(ctx context.Context, req *v1.ListRequestsRequest) (*v1.ListRequestsResponse, error) {
	c, ok := callerFrom(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing session")
	}

	var listing lifecycle.Listing[*data.Request]
	switch {
	case req.Mine:
		listing = s.requests.ListMine(ctx, c.uid())
	case c.isAdmin():
		listing = s.requests.ListAll(ctx)
	default:
		return nil, status.Errorf(codes.PermissionDenied, "admin only")
	}

	out := make([]*v1.Request, 0, len(listing.Records))
	for _, r := range listing.Records {
		out = append(out, toRequest(r))
	}
	return &v1.ListRequestsResponse{Success: listing.Success, Requests: out, Msg: listing.Msg}, nil
}

func (s *Server) TransitionRequest(ctx context.Context, req *v1.TransitionRequest) (*v1.MutationResponse, error) {
	return mutation(s.requests.Transition(ctx, req.Id, req.Status)), nil
}
