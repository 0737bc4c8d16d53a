package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/usecase"
	"github.com/secmon-lab/foodrec/pkg/utils/async"
)

func seedProductsHandler(uc *usecase.SeedUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := queryInt(r, "count", usecase.DefaultSeedProducts)
		if err != nil {
			handleError(r, w, err)
			return
		}

		created, err := uc.SeedProducts(r.Context(), count)
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, seedResponse{Products: created})
	}
}

func seedOrdersHandler(uc *usecase.SeedUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := queryInt(r, "count", usecase.DefaultSeedOrders)
		if err != nil {
			handleError(r, w, err)
			return
		}

		created, err := uc.SeedOrders(r.Context(), count)
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, seedResponse{Orders: created})
	}
}

func seedAllHandler(uc *usecase.SeedUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := queryInt(r, "products", usecase.DefaultSeedProducts)
		if err != nil {
			handleError(r, w, err)
			return
		}
		orders, err := queryInt(r, "orders", usecase.DefaultSeedOrders)
		if err != nil {
			handleError(r, w, err)
			return
		}

		if v := r.URL.Query().Get("async"); v != "" {
			background, err := strconv.ParseBool(v)
			if err != nil {
				handleError(r, w, goerr.Wrap(usecase.ErrInvalidInput, "async must be a boolean", goerr.V("async", v)))
				return
			}
			if background {
				async.Dispatch(r.Context(), "seed", func(ctx context.Context) error {
					return uc.SeedAll(ctx, products, orders)
				})
				writeJSON(r.Context(), w, http.StatusAccepted, seedResponse{Products: products, Orders: orders})
				return
			}
		}

		if err := uc.SeedAll(r.Context(), products, orders); err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, seedResponse{Products: products, Orders: orders})
	}
}
