package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/trellis-ml/trellis/cmd/trellisd/handlers"
	"github.com/trellis-ml/trellis/pkg/auth"
	"github.com/trellis-ml/trellis/pkg/configs/backend"
	"github.com/trellis-ml/trellis/pkg/domain"
	tdb "github.com/trellis-ml/trellis/pkg/domain/trellis/db"
	tpg "github.com/trellis-ml/trellis/pkg/domain/trellis/db/postgres"
	"github.com/trellis-ml/trellis/pkg/plane/endpoint"
	"github.com/trellis-ml/trellis/pkg/plane/images"
	"github.com/trellis-ml/trellis/pkg/plane/k8s"
	"github.com/trellis-ml/trellis/pkg/plane/training"
	"github.com/trellis-ml/trellis/pkg/utils/echoutil"
	"github.com/trellis-ml/trellis/pkg/utils/filewatch"
)

func main() {
	configPath := flag.String("config-path", "", "backend config path")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	issueToken := flag.String("issue-token", "", "print an API token for the subject and exit")
	flag.Parse()

	conf, err := backend.LoadBackendConfig(*configPath)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}
	clusterConf := conf.Cluster()

	var authority *auth.Authority
	if ac := clusterConf.Auth(); ac != nil {
		authority = auth.New(ac.SignKey(), ac.TTL())
	}
	if *issueToken != "" {
		if authority == nil {
			log.Fatal("can not issue token: auth is not configured")
		}
		token, err := authority.Issue(*issueToken)
		if err != nil {
			log.Fatalf("can not issue token: %s", err)
		}
		fmt.Println(token)
		return
	}

	e := echo.New()
	e.Pre(middleware.AddTrailingSlash())

	// set log
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	ctx := context.Background()
	ctx, cancelOnConfigChange, err := filewatch.UntilModifyContext(ctx, *configPath)
	if err != nil {
		log.Fatalf("can not watch configuration: %s", err)
	}
	defer cancelOnConfigChange()

	// get dbaccessor
	db, err := getDBAccessor(ctx, clusterConf.Database(), clusterConf.Schema())
	if err != nil {
		log.Fatalf("can not connect to database: %s", err)
	}
	defer db.Close()

	if err := db.Schema().Upgrade(ctx); err != nil {
		log.Fatalf("can not upgrade schema: %s", err)
	}
	ctx, cancelOnSchemaChange := db.Schema().Context(ctx)
	defer cancelOnSchemaChange()

	context.AfterFunc(ctx, func() {
		log.Println("configuration or schema is updated. quit to restart server.")
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(graceful); err != nil {
			log.Printf("error on shutdown: %s", err)
		}
	})

	// attach the training/serving plane
	clientset, err := k8s.ConnectToK8s()
	if err != nil {
		log.Fatalf("can not connect to kubernetes: %s", err)
	}
	cluster := k8s.AttachCluster(
		k8s.WrapK8sClient(clientset),
		clusterConf.Namespace(),
		clusterConf.Domain(),
	)
	trainer := training.New(cluster, db.Component())
	deployer := endpoint.New(cluster)

	observe := func(handle training.Handle, componentName string, rules []domain.MetricRule) {
		// detached from the submitting request; runs until the job's
		// log stream ends or the server stops.
		if err := trainer.Observe(ctx, handle, componentName, rules); err != nil {
			e.Logger.Errorf(
				"metric observation for job %s (component %s) ended: %s",
				handle.Name, componentName, err,
			)
		}
	}

	// handlers
	apiMiddlewares := []echo.MiddlewareFunc{}
	if authority != nil {
		apiMiddlewares = append(apiMiddlewares, auth.Middleware(authority))
	} else {
		log.Println("auth is not configured. serving API without token verification.")
	}
	api := e.Group("/api", apiMiddlewares...)
	{
		api.POST("/experiments/", handlers.ExperimentRegisterHandler(db.Experiment(), time.Now))
		api.GET("/experiments/", handlers.FindExperimentHandler(db.Experiment()))
		api.GET("/experiments/:name/", handlers.GetExperimentHandler(db.Experiment()))
	}

	{
		api.POST("/trials/", handlers.TrialRegisterHandler(db.Trial(), time.Now))
		api.GET("/trials/", handlers.FindTrialHandler(db.Trial()))
		api.GET("/trials/:name/", handlers.GetTrialHandler(db.Trial()))
	}

	{
		api.POST("/components/", handlers.ComponentRegisterHandler(db.Component()))
		api.GET("/components/", handlers.FindComponentHandler(db.Component()))
		api.GET("/components/:name/", handlers.GetComponentHandler(db.Component()))
		api.PUT("/components/:name/parameters/", handlers.LogParametersHandler(db.Component()))
		api.PUT("/components/:name/inputs/", handlers.LogArtifactHandler(db.Component().LogInput))
		api.PUT("/components/:name/outputs/", handlers.LogArtifactHandler(db.Component().LogOutput))
		api.POST("/components/:name/observations/", handlers.AppendObservationsHandler(db.Component()))
		api.PUT("/components/:name/attach/", handlers.AttachComponentHandler(db.Component()))
		api.PUT("/components/:name/finish/", handlers.FinishComponentHandler(db.Component()))
	}

	{
		api.POST("/analytics/", handlers.AnalyticsQueryHandler(db.Component()))
	}

	{
		api.POST("/jobs/", handlers.JobSubmitHandler(trainer, images.Resolve, observe))
		api.POST("/jobs/sweep/", handlers.JobSweepHandler(
			trainer, images.Resolve, observe, clusterConf.Sweep().Courtesy(),
		))
	}

	{
		api.POST("/endpoints/", handlers.EndpointDeployHandler(deployer, images.Resolve))
		api.DELETE("/endpoints/:name/", handlers.EndpointDeleteHandler(deployer))
	}

	{
		api.GET("/storage/", handlers.StorageInfoHandler(clusterConf.Storage().Bucket()))
	}

	log.Println("registered routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	cert, key := *pcert, *pkey
	if cert != "" && key != "" {
		e.Logger.Fatal(e.StartTLS(fmt.Sprintf(":%d", conf.Port()), cert, key))
	} else {
		e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", conf.Port())))
	}
}

func getDBAccessor(ctx context.Context, dburi string, schemaRepository string) (tdb.TrellisDatabase, error) {
	return tpg.New(ctx, dburi, tpg.WithSchemaRepository(schemaRepository))
}
