package worksheet

import (
	"context"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
)

type WorksheetService interface {
	Create(ctx context.Context, req CreateWorksheetRequest) (WorksheetResponse, error)
	Update(ctx context.Context, id string, req UpdateWorksheetRequest) (WorksheetResponse, error)
	Submit(ctx context.Context, id string) (WorksheetResponse, error)
	Verify(ctx context.Context, id string) (WorksheetResponse, error)
	Approve(ctx context.Context, id string) (WorksheetResponse, error)
	// BulkApprove approves each id independently and returns only the ones
	// that succeeded.
	BulkApprove(ctx context.Context, req BulkApproveRequest) ([]WorksheetResponse, error)
	Reject(ctx context.Context, id string, req RejectRequest) (WorksheetResponse, error)

	List(ctx context.Context, filter WorksheetFilter) (pagination.Page[WorksheetResponse], error)
	My(ctx context.Context, filter WorksheetFilter) (pagination.Page[WorksheetResponse], error)
	PendingVerification(ctx context.Context, params pagination.Params) (pagination.Page[WorksheetResponse], error)
	PendingApproval(ctx context.Context, params pagination.Params) (pagination.Page[WorksheetResponse], error)
	Summary(ctx context.Context, filter SummaryFilter) (Summary, error)
	GetByID(ctx context.Context, id string) (WorksheetResponse, error)
}
