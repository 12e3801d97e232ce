// thought-scratching
// ==================
// A small personal blog: signed-in users write posts, anyone reads
// them. The post access API is exposed as named procedures under
// /rpc (post.getOne, post.getAll, post.createPost, post.updatePost,
// post.refetchImage, post.deletePost) and the pages are rendered
// server-side on top of the same API.
//
// Boot the server:
// ----------------
// $ go run .
//
// Client requests:
// ----------------
// $ curl http://localhost:3333/rpc/post.getAll
// [{"id":"...","title":"Hello","content":"World",...}]
//
// $ curl 'http://localhost:3333/rpc/post.getOne?id=<id>'
// {"id":"<id>","title":"Hello",...}
//
//	$ curl -X POST -H 'Authorization: Bearer dev-admin' \
//	    -d '{"title":"Hello","content":"World"}' \
//	    http://localhost:3333/rpc/post.createPost
package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/docgen"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"

	"github.com/Jakkalsie/thought-scratching/internal/auth"
	appconfig "github.com/Jakkalsie/thought-scratching/internal/config"
	"github.com/Jakkalsie/thought-scratching/internal/imagecdn"
	"github.com/Jakkalsie/thought-scratching/internal/post"
	"github.com/Jakkalsie/thought-scratching/internal/rpc"
	"github.com/Jakkalsie/thought-scratching/internal/store"
	"github.com/Jakkalsie/thought-scratching/internal/web"
)

const ServiceName = "thought-scratching"

type CtxKey int8

const (
	CtxKeyLogger CtxKey = iota
)

type App struct {
	sugarLogger *zap.SugaredLogger
	config      *appconfig.Config
}

func main() {
	cfg := appconfig.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync() // flushes buffer, if any
	sugar := logger.Sugar()

	a := App{
		sugarLogger: sugar,
		config:      cfg,
	}

	promConfig := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(promConfig.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)
	exporter, err := prometheus.New(promConfig, c)
	if err != nil {
		a.sugarLogger.Panicf("failed to initialize prometheus exporter %v", err)
	}
	global.SetMeterProvider(exporter.MeterProvider())

	meter := global.Meter(ServiceName)
	labels := []attribute.KeyValue{
		attribute.String("namespace", "post")}
	completedCalls := metric.Must(meter).NewInt64Counter(
		"rpc/server/completed_count",
		metric.WithDescription("Count of completed procedure calls"),
	).Bind(labels...)
	defer completedCalls.Unbind()

	ctx := context.Background()

	st, err := newStore(ctx, &a)
	if err != nil {
		sugar.Fatalw("store init failed", "err", err)
	}
	defer st.Close()

	authn := auth.New(newProvider(cfg), st, sugar)
	service := post.NewService(st, imagecdn.New(cfg.ImageCDNBase), sugar)
	procedures := rpc.NewRouter(service, sugar, completedCalls)

	site, err := web.NewApp(service, sugar, cfg.Revalidate, cfg.SignInURL)
	if err != nil {
		sugar.Fatalw("template init failed", "err", err)
	}

	r := chi.NewRouter()

	diagRouter := chi.NewRouter()
	diagRouter.Get("/metrics", exporter.ServeHTTP)

	r.Use(middleware.RequestID)
	r.Use(a.Logger)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(authn.Verifier)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		logger := r.Context().Value(CtxKeyLogger).(*zap.SugaredLogger)
		logger.Infow("ping")
		_, err := w.Write([]byte("pong"))
		if err != nil {
			sugar.Errorw(err.Error())
		}
	})

	r.Route("/rpc", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Mount("/", procedures.Routes())
	})

	r.Mount("/", site.Routes())

	// Passing -routes to the program will generate docs for the above
	// router definition.
	if cfg.Routes {
		// nolint
		fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
			ProjectPath: "github.com/Jakkalsie/thought-scratching",
			Intro:       "thought-scratching generated routes.",
		}))

		return
	}

	// Enumerate current post ids and pre-render their view pages.
	if ids, err := st.ListPostIDs(ctx); err != nil {
		sugar.Errorw("post id enumeration failed", "err", err)
	} else {
		site.Warm(ctx, ids)
	}

	go func() {
		err := http.ListenAndServe(cfg.Addr, r)
		if err != nil {
			a.sugarLogger.Errorw(err.Error())
		}
	}()

	err = http.ListenAndServe(cfg.DiagAddr, diagRouter)
	if err != nil {
		a.sugarLogger.Errorw(err.Error())
	}
}

func newStore(ctx context.Context, a *App) (store.Store, error) {
	if a.config.DatabaseURL == "" {
		a.sugarLogger.Infow("no database url configured, using in-memory store")

		return store.NewMemory(), nil
	}

	return store.NewPostgres(ctx, a.config.DatabaseURL)
}

// newProvider picks the identity provider adapter: the configured HTTP
// verifier, or fixed development tokens when none is configured.
func newProvider(cfg *appconfig.Config) auth.Provider {
	if cfg.AuthVerifyURL != "" {
		return auth.NewHTTPProvider(cfg.AuthVerifyURL)
	}

	return &auth.StaticProvider{
		Tokens: map[string]auth.Session{
			"dev-admin": {UserID: "dev-admin", Name: "Dev Admin", IsAdmin: true},
			"dev-user":  {UserID: "dev-user", Name: "Dev User"},
		},
	}
}

func (a *App) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), CtxKeyLogger, a.sugarLogger)))
	})
}
