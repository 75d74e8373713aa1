package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/api"
)

func samplePage() *api.OrderListPage {
	return &api.OrderListPage{
		Count: 42,
		Results: []*api.Order{
			{ID: 1, User: "a@x.y", OrderLines: []api.OrderLine{{ID: 5, Status: api.LineStatusSent}}},
			{ID: 2, User: "b@x.y", OrderLines: []api.OrderLine{{ID: 7, Status: api.LineStatusProcessing}}},
			{ID: 3, User: "c@x.y"},
		},
	}
}

func TestPageStore_Splice(t *testing.T) {
	s := NewPageStore()
	page := samplePage()
	s.Replace(page)

	refreshed := &api.Order{ID: 2, User: "b@x.y", OrderLines: []api.OrderLine{{ID: 7, Status: api.LineStatusSent}}}
	require.True(t, s.Splice(refreshed))

	got := s.Get()
	assert.Equal(t, 42, got.Count)
	assert.Same(t, page.Results[0], got.Results[0])
	assert.Same(t, refreshed, got.Results[1])
	assert.Same(t, page.Results[2], got.Results[2])

	// the previously handed out page is left untouched
	assert.Equal(t, api.LineStatusProcessing, page.Results[1].OrderLines[0].Status)
}

func TestPageStore_SpliceMissingOrder(t *testing.T) {
	s := NewPageStore()
	assert.False(t, s.Splice(&api.Order{ID: 1}))

	page := samplePage()
	s.Replace(page)
	assert.False(t, s.Splice(&api.Order{ID: 99}))
	assert.Same(t, page, s.Get())
}

func TestPageStore_FindLine(t *testing.T) {
	s := NewPageStore()
	_, _, ok := s.FindLine(7)
	assert.False(t, ok)

	s.Replace(samplePage())

	order, line, ok := s.FindLine(7)
	require.True(t, ok)
	assert.Equal(t, int64(2), order.ID)
	assert.Equal(t, api.LineStatusProcessing, line.Status)

	_, _, ok = s.FindLine(100)
	assert.False(t, ok)
}
