package dashboard

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/api"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/metrics"
)

var (
	ErrLineNotFound      = errors.New("order line is not on the displayed page")
	ErrLineLocked        = errors.New("order line is already sent")
	ErrInvalidLineStatus = errors.New("order line status can only be set to processing or sent")
)

// Stage names the step of a line mutation that failed.
type Stage int

const (
	StageNone Stage = iota
	StagePatch
	StageRefresh
)

func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StagePatch:
		return "patch"
	case StageRefresh:
		return "refresh"
	}
	return "unknown"
}

// MutationResult is the combined outcome of updating a line and refreshing
// the order that owns it. When Err is set, Stage tells which step failed;
// StageNone with an error means the edit was rejected before any request.
type MutationResult struct {
	LineID  int64
	OrderID int64
	Line    *api.OrderLine
	Order   *api.Order
	Spliced bool
	Stage   Stage
	Err     error
}

func (r MutationResult) OK() bool {
	return r.Err == nil
}

// SetLineStatus updates one order line and then re-fetches the owning order,
// replacing only that order on the displayed page. Each step is attempted
// once; a failed update skips the refresh.
func (v *OrderList) SetLineStatus(ctx context.Context, lineID int64, status api.LineStatus) MutationResult {
	res := MutationResult{LineID: lineID}

	if err := v.checkLineEdit(lineID, status, &res); err != nil {
		res.Err = err
		metrics.MutationsTotal.WithLabelValues("rejected").Inc()
		v.logger.Info("line status edit rejected", zap.Int64("line_id", lineID), zap.Error(err))
		return res
	}

	before := v.fetch.Generation()

	line, err := v.client.UpdateOrderLine(ctx, lineID, status)
	if err != nil {
		return v.mutationFailed(res, StagePatch, err)
	}
	res.Line = line

	order, err := v.client.GetOrder(ctx, res.OrderID)
	if err != nil {
		return v.mutationFailed(res, StageRefresh, err)
	}
	res.Order = order

	// a list fetch started before the update would bring back the old order
	// and overwrite the splice
	if _, renewed := v.fetch.Renew(before); renewed {
		v.logger.Debug("list fetch predates line update, renewed", zap.Int64("line_id", lineID))
	}
	res.Spliced = v.pages.Splice(order)

	metrics.MutationsTotal.WithLabelValues("ok").Inc()
	v.logger.Info("line status updated",
		zap.Int64("line_id", lineID),
		zap.Int64("order_id", res.OrderID),
		zap.Stringer("status", status),
		zap.Bool("spliced", res.Spliced),
	)
	return res
}

func (v *OrderList) checkLineEdit(lineID int64, status api.LineStatus, res *MutationResult) error {
	if !v.flag.Flag().Allowed() {
		return ErrNotStaff
	}
	if status != api.LineStatusProcessing && status != api.LineStatusSent {
		return fmt.Errorf("%w: got %d", ErrInvalidLineStatus, status)
	}

	order, line, ok := v.pages.FindLine(lineID)
	if !ok {
		return fmt.Errorf("%w: line %d", ErrLineNotFound, lineID)
	}
	res.OrderID = order.ID

	if line.Status == api.LineStatusSent {
		return fmt.Errorf("%w: line %d", ErrLineLocked, lineID)
	}
	return nil
}

func (v *OrderList) mutationFailed(res MutationResult, stage Stage, err error) MutationResult {
	res.Stage = stage
	res.Err = fmt.Errorf("%s step: %w", stage, err)

	if errors.Is(err, context.Canceled) {
		v.logger.Debug("line status edit cancelled", zap.Int64("line_id", res.LineID), zap.Stringer("stage", stage))
		return res
	}

	metrics.MutationsTotal.WithLabelValues(stage.String() + "_failed").Inc()
	v.logger.Error("line status edit failed",
		zap.Int64("line_id", res.LineID),
		zap.Int64("order_id", res.OrderID),
		zap.Stringer("stage", stage),
		zap.Error(err),
	)
	return res
}
