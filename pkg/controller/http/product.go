package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"github.com/secmon-lab/foodrec/pkg/usecase"
)

func createProductHandler(uc *usecase.ProductUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := decodeRequest(r, &req); err != nil {
			handleError(r, w, err)
			return
		}

		product, err := uc.CreateProduct(r.Context(), req.RestaurantName, req.ProductName, req.Description)
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, toProductResponse(product))
	}
}

func createProductsHandler(uc *usecase.ProductUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productBulkRequest
		if err := decodeRequest(r, &req); err != nil {
			handleError(r, w, err)
			return
		}

		products := make([]*model.Product, len(req.Products))
		for i, p := range req.Products {
			products[i] = &model.Product{
				RestaurantName: p.RestaurantName,
				ProductName:    p.ProductName,
				Description:    p.Description,
			}
		}

		created, err := uc.CreateProducts(r.Context(), products)
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, toProductResponses(created))
	}
}

func listProductsHandler(uc *usecase.ProductUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := uc.ListProducts(r.Context())
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toProductResponses(products))
	}
}

func getProductHandler(uc *usecase.ProductUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := uc.GetProduct(r.Context(), model.ProductID(chi.URLParam(r, "productID")))
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toProductResponse(product))
	}
}
