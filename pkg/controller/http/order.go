package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"github.com/secmon-lab/foodrec/pkg/usecase"
)

func createOrderHandler(uc *usecase.OrderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orderRequest
		if err := decodeRequest(r, &req); err != nil {
			handleError(r, w, err)
			return
		}

		order, err := uc.CreateOrder(r.Context(), req.toModel())
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, toOrderResponses([]*model.Order{order})[0])
	}
}

func createOrdersHandler(uc *usecase.OrderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orderBulkRequest
		if err := decodeRequest(r, &req); err != nil {
			handleError(r, w, err)
			return
		}

		orders := make([]*model.Order, len(req.Orders))
		for i, o := range req.Orders {
			orders[i] = o.toModel()
		}

		created, err := uc.CreateOrders(r.Context(), orders)
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, toOrderResponses(created))
	}
}

func listOrdersHandler(uc *usecase.OrderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := uc.ListOrders(r.Context())
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toOrderResponses(orders))
	}
}

func listUserOrdersHandler(uc *usecase.OrderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := uc.ListUserOrders(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toOrderResponses(orders))
	}
}

func orderHistoryHandler(uc *usecase.OrderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", usecase.DefaultHistoryLimit)
		if err != nil {
			handleError(r, w, err)
			return
		}

		orders, err := uc.GetOrderHistory(r.Context(), chi.URLParam(r, "userID"), limit)
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toOrderResponses(orders))
	}
}

func orderSummariesHandler(uc *usecase.OrderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := uc.GetOrderSummaries(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toOrderSummaryResponses(summaries))
	}
}
