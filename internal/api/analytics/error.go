package analytics

import "ExpenseChat/pkg/response"

var (
	ErrInvalidRange      = response.NewError(400, "range start is after range end")
	ErrRangeTooLarge     = response.NewError(400, "range produces too many buckets")
	ErrInvalidBucketSize = response.NewError(400, "bucket size must be day, week or month")
	ErrBuildDashboard    = response.NewError(500, "failed to build dashboard")
)
