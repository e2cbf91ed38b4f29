package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/janelia-flyem/ngportal/catalog"
	"github.com/janelia-flyem/ngportal/command"
	"github.com/janelia-flyem/ngportal/compiler"
	"github.com/janelia-flyem/ngportal/portal"
	"github.com/janelia-flyem/ngportal/viewer"
	"github.com/rs/cors"
	"github.com/zenazn/goji/web"
	"github.com/zenazn/goji/web/middleware"
)

// WebAPIPath is the prefix of every route.
const WebAPIPath = "/api/"

type datasetSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Sources     int    `json:"sources"`
	Views       int    `json:"views"`
}

type linkResponse struct {
	URL         string                `json:"url"`
	State       *viewer.State         `json:"state,omitempty"`
	Diagnostics []compiler.Diagnostic `json:"diagnostics,omitempty"`
}

// Handler returns the service's routes wrapped for CORS.
func (s *Service) Handler() http.Handler {
	mux := web.New()
	mux.Use(middleware.RequestID)
	mux.Use(logRequests)
	mux.Use(middleware.Recoverer)

	mux.Get(WebAPIPath+"server/info", s.serverInfoHandler)
	mux.Get(WebAPIPath+"schema/dataset", schemaHandler)
	mux.Get(WebAPIPath+"datasets", s.datasetsHandler)
	mux.Get(WebAPIPath+"datasets/:name", s.datasetHandler)
	mux.Get(WebAPIPath+"datasets/:name/views", s.viewsHandler)
	mux.Get(WebAPIPath+"datasets/:name/link", s.linkHandler)
	mux.Get(WebAPIPath+"datasets/:name/neuroglancer", s.redirectHandler)
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFound(w, r, "no route for %s", r.URL.Path)
	})
	mux.Compile()

	c := cors.New(cors.Options{
		AllowedOrigins: s.config.Server.CorsDomains,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	})
	return c.Handler(mux)
}

// logRequests records the method, path and latency of each request.
func logRequests(c *web.C, h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		portal.Debugf("[%s] %s %s (%s)\n", middleware.GetReqID(*c), r.Method, r.URL.RequestURI(), time.Since(start))
	}
	return http.HandlerFunc(fn)
}

func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		ServerError(w, r, "can't encode response: %v", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		portal.Errorf("error writing response to %s: %v\n", r.URL.Path, err)
	}
}

func (s *Service) serverInfoHandler(w http.ResponseWriter, r *http.Request) {
	info := struct {
		Version    string `json:"version"`
		ViewerHost string `json:"viewerHost"`
		Datasets   int    `json:"datasets"`
		Uptime     string `json:"uptime"`
	}{
		Version:    portal.Version.String(),
		ViewerHost: s.options.ViewerHost,
		Datasets:   s.catalog.Len(),
		Uptime:     time.Since(s.started).Truncate(time.Second).String(),
	}
	writeJSON(w, r, info)
}

// schemaHandler returns the JSON Schema that catalog entries are validated against.
func schemaHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/schema+json")
	if _, err := w.Write([]byte(catalog.SchemaJSON())); err != nil {
		portal.Errorf("error writing response to %s: %v\n", r.URL.Path, err)
	}
}

func (s *Service) datasetsHandler(w http.ResponseWriter, r *http.Request) {
	datasets := s.catalog.Datasets()
	summaries := make([]datasetSummary, len(datasets))
	for i, ds := range datasets {
		summaries[i] = datasetSummary{
			Name:        ds.Name,
			Description: ds.Description,
			Sources:     len(ds.Sources),
			Views:       len(ds.Views),
		}
	}
	writeJSON(w, r, summaries)
}

// dataset returns the dataset named in the route or writes a 404.
func (s *Service) dataset(c web.C, w http.ResponseWriter, r *http.Request) (*catalog.Dataset, bool) {
	name := c.URLParams["name"]
	ds, found := s.catalog.Dataset(name)
	if !found {
		NotFound(w, r, "no dataset %q in catalog", name)
		return nil, false
	}
	return ds, true
}

func (s *Service) datasetHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	if ds, ok := s.dataset(c, w, r); ok {
		writeJSON(w, r, ds)
	}
}

func (s *Service) viewsHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(c, w, r)
	if !ok {
		return
	}
	views := ds.Views
	if views == nil {
		views = []catalog.View{}
	}
	writeJSON(w, r, views)
}

// compile resolves the query's selection and compiles it, writing any error.
func (s *Service) compile(c web.C, w http.ResponseWriter, r *http.Request) (*compiler.Result, bool) {
	ds, ok := s.dataset(c, w, r)
	if !ok {
		return nil, false
	}
	sel, err := selectionFromQuery(ds, r)
	if err != nil {
		BadRequest(w, r, "dataset %q: %v", ds.Name, err)
		return nil, false
	}
	result, err := compiler.Compile(ds, sel, s.options)
	if err != nil {
		ServerError(w, r, "%v", err)
		return nil, false
	}
	return result, true
}

func (s *Service) linkHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	result, ok := s.compile(c, w, r)
	if !ok {
		return
	}
	writeJSON(w, r, linkResponse{
		URL:         result.URL,
		State:       result.State,
		Diagnostics: result.Diagnostics,
	})
}

func (s *Service) redirectHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	result, ok := s.compile(c, w, r)
	if !ok {
		return
	}
	if result.Disabled() {
		NotFound(w, r, "nothing to show for dataset %q with this selection", c.URLParams["name"])
		return
	}
	http.Redirect(w, r, result.URL, http.StatusFound)
}

// selectionFromQuery reads "view" or "sources" from the query string.  With
// neither, the dataset's default view is used.
func selectionFromQuery(ds *catalog.Dataset, r *http.Request) (compiler.Selection, error) {
	query := r.URL.Query()
	_, hasView := query["view"]
	_, hasSources := query["sources"]
	switch {
	case hasView && hasSources:
		return compiler.Selection{}, fmt.Errorf("give either view or sources, not both")
	case hasView:
		key := query.Get("view")
		v, found := ds.View(key)
		if !found {
			return compiler.Selection{}, fmt.Errorf("no view %q", key)
		}
		return compiler.FromView(v), nil
	case hasSources:
		return compiler.Selection{SourceNames: command.SplitList(query.Get("sources"))}, nil
	default:
		return compiler.FromView(ds.DefaultView()), nil
	}
}
