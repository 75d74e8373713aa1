package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/api"
	mock_dashboard "gitlab.ozon.dev/pupkingeorgij/orderdash/internal/dashboard/mocks"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/fetch"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/query"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/staff"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/store"
)

type staticFlag staff.Flag

func (f staticFlag) Flag() staff.Flag {
	return staff.Flag(f)
}

var (
	staffUser    = staticFlag{Resolved: true, IsStaff: true}
	customerUser = staticFlag{Resolved: true, IsStaff: false}
)

func newTestList(t *testing.T, flag staff.Source) (*OrderList, *mock_dashboard.MockOrderAPI) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockAPI := mock_dashboard.NewMockOrderAPI(ctrl)
	v := NewOrderList(mockAPI, flag, store.NewPageStore(), zap.NewNop())
	t.Cleanup(v.Close)
	return v, mockAPI
}

func wait(t *testing.T, h *fetch.Handle) fetch.Outcome {
	t.Helper()
	require.NotNil(t, h)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	outcome := h.Wait(ctx)
	require.NotEqual(t, fetch.Pending, outcome, "fetch did not finish in time")
	return outcome
}

func pageOf(count int, ids ...int64) *api.OrderListPage {
	page := &api.OrderListPage{Count: count}
	for _, id := range ids {
		page.Results = append(page.Results, &api.Order{ID: id, User: "user@example.com"})
	}
	return page
}

func TestOrderList_MountFetchesDefaultFilter(t *testing.T) {
	v, mockAPI := newTestList(t, customerUser)

	page := pageOf(1, 10)
	mockAPI.EXPECT().
		ListOrders(gomock.Any(), "page=1&page_size=10&status=&from_date=&to_date=&search=&ordering=-date_added").
		Return(page, nil)

	assert.True(t, v.Snapshot().Loading)

	assert.Equal(t, fetch.Succeeded, wait(t, v.Mount()))

	snap := v.Snapshot()
	assert.False(t, snap.Loading)
	assert.Same(t, page, snap.Page)
	assert.False(t, snap.ShowSearch)
	assert.False(t, snap.CanEditLines)
}

func TestOrderList_OnlyLatestFilterIsDisplayed(t *testing.T) {
	v, mockAPI := newTestList(t, customerUser)

	newOrders, err := query.Default().WithStatus(api.OrderStatusNew)
	require.NoError(t, err)

	stale := pageOf(30, 1, 2, 3)
	fresh := pageOf(1, 4)
	release := make(chan struct{})

	mockAPI.EXPECT().
		ListOrders(gomock.Any(), query.Build(query.Default())).
		DoAndReturn(func(_ context.Context, _ string) (*api.OrderListPage, error) {
			<-release
			return stale, nil
		})
	mockAPI.EXPECT().
		ListOrders(gomock.Any(), query.Build(newOrders)).
		Return(fresh, nil)

	first := v.Mount()
	second, err := v.SetStatus(api.OrderStatusNew)
	require.NoError(t, err)

	assert.Equal(t, fetch.Succeeded, wait(t, second))
	close(release)
	assert.Equal(t, fetch.Cancelled, wait(t, first))

	v.Wait()
	assert.Same(t, fresh, v.Snapshot().Page)
	assert.Equal(t, api.OrderStatusNew, v.Snapshot().Filter.Status)
}

func TestOrderList_FailedFetchKeepsDisplayedPage(t *testing.T) {
	v, mockAPI := newTestList(t, customerUser)

	page := pageOf(12, 1, 2)
	mockAPI.EXPECT().ListOrders(gomock.Any(), gomock.Any()).Return(page, nil)
	wait(t, v.Mount())

	mockAPI.EXPECT().
		ListOrders(gomock.Any(), gomock.Any()).
		Return(nil, &api.HTTPError{Method: "GET", Path: "/orders/", StatusCode: 500, StatusText: "Internal Server Error"})

	h, err := v.SetPage(1)
	require.NoError(t, err)
	assert.Equal(t, fetch.Failed, wait(t, h))

	snap := v.Snapshot()
	assert.False(t, snap.Loading)
	assert.Same(t, page, snap.Page)
	assert.Equal(t, 1, snap.Filter.Page)
}

func TestOrderList_FilterChangesResetPagination(t *testing.T) {
	v, mockAPI := newTestList(t, staffUser)

	var queries []string
	mockAPI.EXPECT().
		ListOrders(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q string) (*api.OrderListPage, error) {
			queries = append(queries, q)
			return pageOf(0), nil
		}).
		Times(5)

	wait(t, v.Mount())

	h, err := v.SetPage(2)
	require.NoError(t, err)
	wait(t, h)

	from := time.Date(2021, time.February, 3, 0, 0, 0, 0, time.UTC)
	h, err = v.SetFromDate(&from)
	require.NoError(t, err)
	wait(t, h)

	h, err = v.SetPage(4)
	require.NoError(t, err)
	wait(t, h)

	h, err = v.SetSearch("gamer")
	require.NoError(t, err)
	wait(t, h)

	require.Len(t, queries, 5)
	assert.Equal(t, "page=3&page_size=10&status=&from_date=&to_date=&search=&ordering=-date_added", queries[1])
	assert.Equal(t, "page=1&page_size=10&status=&from_date=2021-2-3&to_date=&search=&ordering=-date_added", queries[2])
	assert.Equal(t, "page=5&page_size=10&status=&from_date=2021-2-3&to_date=&search=&ordering=-date_added", queries[3])
	assert.Equal(t, "page=1&page_size=10&status=&from_date=2021-2-3&to_date=&search=gamer&ordering=-date_added", queries[4])
}

func TestOrderList_UnchangedFilterDoesNotRefetch(t *testing.T) {
	v, mockAPI := newTestList(t, customerUser)

	mockAPI.EXPECT().ListOrders(gomock.Any(), gomock.Any()).Return(pageOf(0), nil).Times(1)

	first := v.Mount()
	wait(t, first)

	again, err := v.SetPage(0)
	require.NoError(t, err)
	assert.Same(t, first, again)
}

func TestOrderList_InvalidChangesAreRejected(t *testing.T) {
	v, _ := newTestList(t, customerUser)

	_, err := v.SetPageSize(30)
	assert.ErrorIs(t, err, query.ErrInvalidPageSize)

	_, err = v.SetSearch("x")
	assert.ErrorIs(t, err, ErrNotStaff)

	assert.Equal(t, query.Default(), v.Filter())
}

func TestOrderList_UnmountedViewDefersFetch(t *testing.T) {
	v, mockAPI := newTestList(t, customerUser)

	h, err := v.SetStatus(api.OrderStatusDone)
	require.NoError(t, err)
	assert.Nil(t, h)

	done, err := query.Default().WithStatus(api.OrderStatusDone)
	require.NoError(t, err)
	mockAPI.EXPECT().ListOrders(gomock.Any(), query.Build(done)).Return(pageOf(0), nil)

	assert.Equal(t, fetch.Succeeded, wait(t, v.Mount()))
}

func TestOrderList_UnmountCancelsInFlightFetch(t *testing.T) {
	v, mockAPI := newTestList(t, customerUser)

	mockAPI.EXPECT().
		ListOrders(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string) (*api.OrderListPage, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	h := v.Mount()
	v.Unmount()

	assert.Equal(t, fetch.Cancelled, wait(t, h))
	assert.NoError(t, h.Err())
	assert.Nil(t, v.Snapshot().Page)
}

func TestOrderList_RefetchKeepsLoadingOff(t *testing.T) {
	v, mockAPI := newTestList(t, customerUser)

	page := pageOf(25, 1, 2)
	mockAPI.EXPECT().ListOrders(gomock.Any(), gomock.Any()).Return(page, nil)
	wait(t, v.Mount())

	entered := make(chan struct{})
	release := make(chan struct{})
	mockAPI.EXPECT().
		ListOrders(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string) (*api.OrderListPage, error) {
			close(entered)
			<-release
			return pageOf(25, 3), nil
		})

	h, err := v.SetPage(1)
	require.NoError(t, err)
	<-entered

	snap := v.Snapshot()
	assert.False(t, snap.Loading)
	assert.Same(t, page, snap.Page)

	close(release)
	assert.Equal(t, fetch.Succeeded, wait(t, h))
	assert.False(t, v.Snapshot().Loading)
}

func TestOrderList_FirstFetchFailureClearsLoading(t *testing.T) {
	v, mockAPI := newTestList(t, customerUser)

	mockAPI.EXPECT().ListOrders(gomock.Any(), gomock.Any()).Return(nil, api.ErrNetwork)

	assert.Equal(t, fetch.Failed, wait(t, v.Mount()))

	snap := v.Snapshot()
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.Page)
}
