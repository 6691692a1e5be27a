package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// FeedName is the {feed} path parameter.
type FeedName = string

// CurateFeedParams holds the query parameters of POST /feeds/{feed}/curate.
type CurateFeedParams struct {
	// Limit overrides the max count of the request body.
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// ServerInterface lists every HTTP operation of the curator API.
type ServerInterface interface {
	// (POST /curate)
	Curate(w http.ResponseWriter, r *http.Request)
	// (POST /curate/batch)
	CurateBatch(w http.ResponseWriter, r *http.Request)
	// (GET /feeds)
	ListFeeds(w http.ResponseWriter, r *http.Request)
	// (PUT /feeds/{feed})
	PutFeed(w http.ResponseWriter, r *http.Request, feed FeedName)
	// (GET /feeds/{feed})
	GetFeed(w http.ResponseWriter, r *http.Request, feed FeedName)
	// (DELETE /feeds/{feed})
	DeleteFeed(w http.ResponseWriter, r *http.Request, feed FeedName)
	// (POST /feeds/{feed}/curate)
	CurateFeed(w http.ResponseWriter, r *http.Request, feed FeedName, params CurateFeedParams)
	// (GET /rules)
	ListRules(w http.ResponseWriter, r *http.Request)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// ChiServerOptions configures route registration.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []func(http.Handler) http.Handler
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError reports a path or query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// serverInterfaceWrapper binds parameters before calling the handler.
type serverInterfaceWrapper struct {
	handler          ServerInterface
	middlewares      []func(http.Handler) http.Handler
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *serverInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	var handler http.Handler = h
	for _, mw := range siw.middlewares {
		handler = mw(handler)
	}
	handler.ServeHTTP(w, r)
}

func (siw *serverInterfaceWrapper) bindFeed(w http.ResponseWriter, r *http.Request) (FeedName, bool) {
	var feed FeedName
	err := runtime.BindStyledParameterWithOptions("simple", "feed", chi.URLParam(r, "feed"), &feed,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "feed", Err: err})
		return "", false
	}
	return feed, true
}

func (siw *serverInterfaceWrapper) Curate(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.handler.Curate)
}

func (siw *serverInterfaceWrapper) CurateBatch(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.handler.CurateBatch)
}

func (siw *serverInterfaceWrapper) ListFeeds(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.handler.ListFeeds)
}

func (siw *serverInterfaceWrapper) PutFeed(w http.ResponseWriter, r *http.Request) {
	feed, ok := siw.bindFeed(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.handler.PutFeed(w, r, feed)
	})
}

func (siw *serverInterfaceWrapper) GetFeed(w http.ResponseWriter, r *http.Request) {
	feed, ok := siw.bindFeed(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.handler.GetFeed(w, r, feed)
	})
}

func (siw *serverInterfaceWrapper) DeleteFeed(w http.ResponseWriter, r *http.Request) {
	feed, ok := siw.bindFeed(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.handler.DeleteFeed(w, r, feed)
	})
}

func (siw *serverInterfaceWrapper) CurateFeed(w http.ResponseWriter, r *http.Request) {
	feed, ok := siw.bindFeed(w, r)
	if !ok {
		return
	}

	var params CurateFeedParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.handler.CurateFeed(w, r, feed, params)
	})
}

func (siw *serverInterfaceWrapper) ListRules(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.handler.ListRules)
}

func (siw *serverInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.handler.HealthCheck)
}

func (siw *serverInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.handler.Metrics)
}

// HandlerWithOptions registers every route of si on the configured router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := &serverInterfaceWrapper{
		handler:          si,
		middlewares:      options.Middlewares,
		errorHandlerFunc: options.ErrorHandlerFunc,
	}

	base := options.BaseURL
	r.Group(func(r chi.Router) {
		r.Post(base+"/curate", wrapper.Curate)
		r.Post(base+"/curate/batch", wrapper.CurateBatch)
		r.Get(base+"/feeds", wrapper.ListFeeds)
		r.Put(base+"/feeds/{feed}", wrapper.PutFeed)
		r.Get(base+"/feeds/{feed}", wrapper.GetFeed)
		r.Delete(base+"/feeds/{feed}", wrapper.DeleteFeed)
		r.Post(base+"/feeds/{feed}/curate", wrapper.CurateFeed)
		r.Get(base+"/rules", wrapper.ListRules)
		r.Get(base+"/health", wrapper.HealthCheck)
		r.Get(base+"/metrics", wrapper.Metrics)
	})
	return r
}
