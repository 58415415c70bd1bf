// Package openapi holds the wire types and chi routing for api/openapi.yaml,
// laid out the way oapi-codegen's chi-server target emits them.
package openapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ChartPoint defines model for ChartPoint.
type ChartPoint struct {
	Price float64   `json:"price"`
	Time  time.Time `json:"time"`
}

// Error defines model for Error.
type Error struct {
	Code    int     `json:"code"`
	Hint    *string `json:"hint,omitempty"`
	Message string  `json:"message"`
}

// Quote defines model for Quote.
type Quote struct {
	Change        float64       `json:"change"`
	ChangePercent float64       `json:"changePercent"`
	ChartData     *[]ChartPoint `json:"chartData,omitempty"`
	Currency      string        `json:"currency"`
	Exchange      string        `json:"exchange"`
	High          float64       `json:"high"`
	LastUpdated   time.Time     `json:"lastUpdated"`
	Low           float64       `json:"low"`
	Open          float64       `json:"open"`
	PrevClose     float64       `json:"prevClose"`
	Price         float64       `json:"price"`
	ShortName     string        `json:"shortName"`
	Symbol        string        `json:"symbol"`
	Volume        int64         `json:"volume"`
}

// QuoteList defines model for QuoteList.
type QuoteList struct {
	Count int     `json:"count"`
	Data  []Quote `json:"data"`
}

// ExchangeParam defines model for ExchangeParam.
type ExchangeParam = string

// SymbolParam defines model for SymbolParam.
type SymbolParam = string

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// All cached quotes
	// (GET /all)
	GetAll(w http.ResponseWriter, r *http.Request)
	// Cached quotes of one exchange
	// (GET /{exchange})
	GetByExchange(w http.ResponseWriter, r *http.Request, exchange ExchangeParam)
	// One cached quote
	// (GET /{exchange}/{symbol})
	GetBySymbol(w http.ResponseWriter, r *http.Request, exchange ExchangeParam, symbol SymbolParam)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

// GetAll operation middleware
func (siw *ServerInterfaceWrapper) GetAll(w http.ResponseWriter, r *http.Request) {
	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetAll(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// GetByExchange operation middleware
func (siw *ServerInterfaceWrapper) GetByExchange(w http.ResponseWriter, r *http.Request) {
	var err error

	// ------------- Path parameter "exchange" -------------
	var exchange ExchangeParam

	err = runtime.BindStyledParameterWithOptions("simple", "exchange", chi.URLParam(r, "exchange"), &exchange, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "exchange", Err: err})
		return
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetByExchange(w, r, exchange)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// GetBySymbol operation middleware
func (siw *ServerInterfaceWrapper) GetBySymbol(w http.ResponseWriter, r *http.Request) {
	var err error

	// ------------- Path parameter "exchange" -------------
	var exchange ExchangeParam

	err = runtime.BindStyledParameterWithOptions("simple", "exchange", chi.URLParam(r, "exchange"), &exchange, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "exchange", Err: err})
		return
	}

	// ------------- Path parameter "symbol" -------------
	var symbol SymbolParam

	err = runtime.BindStyledParameterWithOptions("simple", "symbol", chi.URLParam(r, "symbol"), &symbol, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "symbol", Err: err})
		return
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetBySymbol(w, r, exchange, symbol)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/all", wrapper.GetAll)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/{exchange}", wrapper.GetByExchange)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/{exchange}/{symbol}", wrapper.GetBySymbol)
	})

	return r
}
