package routes

import (
	"net/http"

	swaggerHandler "github.com/swaggo/http-swagger"

	_ "github.com/oggyb/smshub/internal/docs" // swagger docs
	"github.com/oggyb/smshub/internal/response"
)

type AppDeps struct {
	Home       HomeHandler
	Activation ActivationHandler
}

type HomeHandler interface {
	Index(w http.ResponseWriter, r *http.Request)
	Health(w http.ResponseWriter, r *http.Request)
}

type ActivationHandler interface {
	Balance(w http.ResponseWriter, r *http.Request)
	NumbersStatus(w http.ResponseWriter, r *http.Request)
	Prices(w http.ResponseWriter, r *http.Request)
	Order(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	SetStatus(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	ControlScheduler(w http.ResponseWriter, r *http.Request)
}

func Register(mux *http.ServeMux, d AppDeps) {
	mux.HandleFunc("GET /{$}", d.Home.Index)
	mux.HandleFunc("GET /health", d.Home.Health)

	mux.HandleFunc("GET /balance", d.Activation.Balance)
	mux.HandleFunc("GET /numbers/status", d.Activation.NumbersStatus)
	mux.HandleFunc("GET /prices", d.Activation.Prices)

	mux.HandleFunc("POST /activations", d.Activation.Order)
	mux.HandleFunc("GET /activations", d.Activation.List)
	mux.HandleFunc("GET /activations/{id}", d.Activation.Get)
	mux.HandleFunc("POST /activations/{id}/status", d.Activation.SetStatus)
	mux.HandleFunc("POST /activations/{id}/refresh", d.Activation.Refresh)

	mux.HandleFunc("POST /scheduler", d.Activation.ControlScheduler)

	mux.HandleFunc("GET /swagger/", swaggerHandler.WrapHandler)

	// Anything else is a JSON 404.
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.RespondError(w, http.StatusNotFound, "route not found")
	}))
}
