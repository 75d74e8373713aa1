//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=mock_server
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/api"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/charts"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/dashboard"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/fetch"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/query"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/staff"
)

const filterDateLayout = "2006-01-02"

type OrderList interface {
	Snapshot() dashboard.Snapshot
	Update(fn func(query.Filter) (query.Filter, error)) (*fetch.Handle, error)
	SetLineStatus(ctx context.Context, lineID int64, status api.LineStatus) dashboard.MutationResult
	Line(lineID int64) (api.OrderLine, bool)
}

type StaffSource interface {
	Flag() staff.Flag
}

type Chart interface {
	SetPeriod(period int) (*fetch.Handle, error)
	Current() interface{}
}

type Server struct {
	orders       OrderList
	staff        StaffSource
	charts       map[string]Chart
	server       *http.Server
	AuditManager *AuditManager
	logger       *zap.Logger
}

func New(orders OrderList, staff StaffSource, charts map[string]Chart, audit *AuditManager, logger *zap.Logger) *Server {
	return &Server{
		orders:       orders,
		staff:        staff,
		charts:       charts,
		AuditManager: audit,
		logger:       logger,
	}
}

func (s *Server) Run(ctx context.Context, port string) error {
	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.setupRoutes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.AuditManager.Start(ctx)

	s.logger.Info("dashboard server starting", zap.String("port", port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down dashboard server")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.logger.Info("http server shutdown completed")

	s.AuditManager.Shutdown(ctx)
	return nil
}

func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()
	router.Use(s.auditLogMiddleware)

	router.HandleFunc("/dashboard/orders", s.handleGetOrders).Methods(http.MethodGet).Name("handleGetOrders")
	router.HandleFunc("/dashboard/orders/filter", s.handleUpdateFilter).Methods(http.MethodPatch).Name("handleUpdateFilter")
	router.HandleFunc("/dashboard/order-lines/{id:[0-9]+}", s.handleUpdateLineStatus).Methods(http.MethodPatch).Name("handleUpdateLineStatus")
	router.HandleFunc("/dashboard/staff", s.handleGetStaff).Methods(http.MethodGet).Name("handleGetStaff")

	router.HandleFunc("/dashboard/charts/{chart}", s.handleGetChart).Methods(http.MethodGet).Name("handleGetChart")
	router.HandleFunc("/dashboard/charts/{chart}/period", s.handleSetChartPeriod).Methods(http.MethodPut).Name("handleSetChartPeriod")

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet).Name("metrics")

	return router
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

type filterView struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Status   int    `json:"status"`
	FromDate string `json:"from_date,omitempty"`
	ToDate   string `json:"to_date,omitempty"`
	Search   string `json:"search,omitempty"`
}

type ordersView struct {
	Filter       filterView   `json:"filter"`
	Count        int          `json:"count"`
	Results      []*api.Order `json:"results"`
	Loading      bool         `json:"loading"`
	ShowSearch   bool         `json:"show_search"`
	CanEditLines bool         `json:"can_edit_lines"`
	Generation   uint64       `json:"generation"`
}

func newOrdersView(snap dashboard.Snapshot) ordersView {
	view := ordersView{
		Filter: filterView{
			Page:     snap.Filter.Page,
			PageSize: snap.Filter.PageSize,
			Status:   int(snap.Filter.Status),
			FromDate: formatDate(snap.Filter.FromDate),
			ToDate:   formatDate(snap.Filter.ToDate),
			Search:   snap.Filter.SearchText,
		},
		Results:      []*api.Order{},
		Loading:      snap.Loading,
		ShowSearch:   snap.ShowSearch,
		CanEditLines: snap.CanEditLines,
		Generation:   snap.Generation,
	}
	if snap.Page != nil {
		view.Count = snap.Page.Count
		if snap.Page.Results != nil {
			view.Results = snap.Page.Results
		}
	}
	return view
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(filterDateLayout)
}

func (s *Server) handleGetOrders(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, newOrdersView(s.orders.Snapshot()))
}

// filterRequest fields are optional; a nil field leaves that part of the
// filter alone and an empty date string clears the bound.
type filterRequest struct {
	Page     *int    `json:"page"`
	PageSize *int    `json:"page_size"`
	Status   *int    `json:"status"`
	FromDate *string `json:"from_date"`
	ToDate   *string `json:"to_date"`
	Search   *string `json:"search"`
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse(filterDateLayout, value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func (s *Server) handleUpdateFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var from, to *time.Time
	var err error
	if req.FromDate != nil {
		if from, err = parseDate(*req.FromDate); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid from_date. Use YYYY-MM-DD")
			return
		}
	}
	if req.ToDate != nil {
		if to, err = parseDate(*req.ToDate); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid to_date. Use YYYY-MM-DD")
			return
		}
	}
	if req.Search != nil && !s.staff.Flag().Allowed() {
		respondError(w, http.StatusForbidden, "Error: "+dashboard.ErrNotStaff.Error())
		return
	}

	// the page is applied last so an explicit page survives the reset the
	// other changes cause
	_, err = s.orders.Update(func(f query.Filter) (query.Filter, error) {
		var err error
		if req.PageSize != nil {
			if f, err = f.WithPageSize(*req.PageSize); err != nil {
				return f, err
			}
		}
		if req.Status != nil {
			if f, err = f.WithStatus(api.OrderStatus(*req.Status)); err != nil {
				return f, err
			}
		}
		if req.FromDate != nil {
			f = f.WithFromDate(from)
		}
		if req.ToDate != nil {
			f = f.WithToDate(to)
		}
		if req.Search != nil {
			f = f.WithSearch(*req.Search)
		}
		if req.Page != nil {
			if f, err = f.WithPage(*req.Page); err != nil {
				return f, err
			}
		}
		return f, nil
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, "Error: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, newOrdersView(s.orders.Snapshot()))
}

type lineStatusRequest struct {
	Status int `json:"status"`
}

func (s *Server) handleUpdateLineStatus(w http.ResponseWriter, r *http.Request) {
	lineID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order line ID")
		return
	}

	var req lineStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res := s.orders.SetLineStatus(r.Context(), lineID, api.LineStatus(req.Status))
	if res.OK() {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"order":   res.Order,
			"spliced": res.Spliced,
		})
		return
	}

	switch {
	case errors.Is(res.Err, dashboard.ErrNotStaff):
		respondError(w, http.StatusForbidden, "Error: "+res.Err.Error())
	case errors.Is(res.Err, dashboard.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "Error: "+res.Err.Error())
	case errors.Is(res.Err, dashboard.ErrLineLocked):
		respondError(w, http.StatusConflict, "Error: "+res.Err.Error())
	case errors.Is(res.Err, dashboard.ErrInvalidLineStatus):
		respondError(w, http.StatusBadRequest, "Error: "+res.Err.Error())
	default:
		respondJSON(w, http.StatusBadGateway, map[string]string{
			"error": res.Err.Error(),
			"stage": res.Stage.String(),
		})
	}
}

func (s *Server) handleGetStaff(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.staff.Flag())
}

func (s *Server) chart(w http.ResponseWriter, r *http.Request) (Chart, bool) {
	name := mux.Vars(r)["chart"]
	chart, ok := s.charts[name]
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown chart "+name)
	}
	return chart, ok
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	chart, ok := s.chart(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, chart.Current())
}

type periodRequest struct {
	Period int `json:"period"`
}

func (s *Server) handleSetChartPeriod(w http.ResponseWriter, r *http.Request) {
	chart, ok := s.chart(w, r)
	if !ok {
		return
	}

	var req periodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := chart.SetPeriod(req.Period); err != nil {
		if errors.Is(err, charts.ErrInvalidPeriod) {
			respondError(w, http.StatusBadRequest, "Error: "+err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, chart.Current())
}
