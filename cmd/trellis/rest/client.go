package rest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tprof "github.com/trellis-ml/trellis/cmd/trellis/config/profiles"
	apianalytics "github.com/trellis-ml/trellis/pkg/api/types/analytics"
	apicomponents "github.com/trellis-ml/trellis/pkg/api/types/components"
	apiendpoints "github.com/trellis-ml/trellis/pkg/api/types/endpoints"
	apiexperiments "github.com/trellis-ml/trellis/pkg/api/types/experiments"
	apijobs "github.com/trellis-ml/trellis/pkg/api/types/jobs"
	apistorage "github.com/trellis-ml/trellis/pkg/api/types/storage"
	apitrials "github.com/trellis-ml/trellis/pkg/api/types/trials"
	"github.com/trellis-ml/trellis/pkg/utils/slices"
)

// FindComponentParameter is the filter for FindComponent.
// Zero-valued fields do not restrict the search.
type FindComponentParameter struct {
	Experiment  string
	Trial       string
	Name        string
	DisplayName string
	Status      string
}

type TrellisClient interface {
	// RegisterExperiment creates a new experiment.
	RegisterExperiment(ctx context.Context, spec apiexperiments.Spec) (apiexperiments.Detail, error)

	// GetExperiment fetches one experiment by name.
	GetExperiment(ctx context.Context, name string) (apiexperiments.Detail, error)

	// FindExperiment lists experiments in creation order.
	FindExperiment(ctx context.Context) ([]apiexperiments.Detail, error)

	// RegisterTrial creates a new trial under an experiment.
	RegisterTrial(ctx context.Context, spec apitrials.Spec) (apitrials.Detail, error)

	// GetTrial fetches one trial with its components in attachment order.
	GetTrial(ctx context.Context, name string) (apitrials.Detail, error)

	// FindTrial lists trials, restricted to one experiment when
	// experiment is not empty.
	FindTrial(ctx context.Context, experiment string) ([]apitrials.Detail, error)

	// RegisterComponent creates a new trial component in "created" status.
	RegisterComponent(ctx context.Context, spec apicomponents.Spec) (apicomponents.Detail, error)

	// GetComponent fetches one trial component by name.
	GetComponent(ctx context.Context, name string) (apicomponents.Detail, error)

	// FindComponent lists trial components matching the filter.
	FindComponent(ctx context.Context, query FindComponentParameter) ([]apicomponents.Detail, error)

	// LogParameters merges parameters into the component.
	// Re-logged names take the new value.
	LogParameters(ctx context.Context, componentName string, parameters map[string]apicomponents.ParamValue) error

	// LogInput records an input artifact of the component.
	LogInput(ctx context.Context, componentName string, artifact apicomponents.Artifact) error

	// LogOutput records an output artifact of the component.
	LogOutput(ctx context.Context, componentName string, artifact apicomponents.Artifact) error

	// AppendObservations appends observations to one metric series of
	// the component.
	AppendObservations(ctx context.Context, componentName string, metric string, observations []apicomponents.Observation) error

	// AttachComponent attaches the component to the trial.
	// Attaching the same pair again is accepted and changes nothing.
	AttachComponent(ctx context.Context, trialName string, componentName string) error

	// FinishComponent finalizes the component with "completed" or
	// "failed".
	FinishComponent(ctx context.Context, componentName string, status string, endedAt time.Time) (apicomponents.Detail, error)

	// Query builds an analytics table over trial components.
	Query(ctx context.Context, query apianalytics.Query) (apianalytics.Table, error)

	// SubmitJob launches one training job and returns its handle.
	SubmitJob(ctx context.Context, spec apijobs.Spec) (apijobs.Handle, error)

	// SweepJobs launches several training jobs. Per-job failures are
	// reported in the results, not as an error.
	SweepJobs(ctx context.Context, specs []apijobs.Spec) ([]apijobs.SweepResult, error)

	// DeployEndpoint deploys a model-serving endpoint.
	DeployEndpoint(ctx context.Context, spec apiendpoints.Spec) (apiendpoints.Handle, error)

	// DeleteEndpoint removes an endpoint. With deleteConfig, its
	// configuration is dropped too.
	DeleteEndpoint(ctx context.Context, name string, deleteConfig bool) error

	// StorageInfo tells which bucket the server stages datasets on.
	StorageInfo(ctx context.Context) (apistorage.Info, error)
}

type client struct {
	httpclient *http.Client
	api        string
	token      string
}

// create new trellis client for TrellisProfile
//
// # Args
//
// - *tprof.TrellisProfile
//
// # Return
//
// - TrellisClient: created client
//
// - error: If given profile is invalid, ErrProfileInvalid is returned.
func NewClient(prof *tprof.TrellisProfile) (TrellisClient, error) {
	if err := prof.Verify(); err != nil {
		return nil, err
	}
	httpclient := new(http.Client)

	if prof.Cert.CA != "" {
		hc, err := trustCa(httpclient, []string{prof.Cert.CA})
		if err != nil {
			return nil, err
		}
		httpclient = hc
	}

	c := &client{
		httpclient: httpclient,
		api:        strings.TrimSuffix(prof.ApiRoot, "/"),
		token:      prof.Token,
	}

	return c, nil
}

// build URL with path
func (c *client) apipath(path ...string) string {
	path = slices.Map(path, func(p string) string {
		return strings.TrimPrefix(strings.TrimSuffix(p, "/"), "/")
	})

	return strings.Join(append([]string{c.api}, path...), "/")
}

// newRequest builds a request with the profile's token. When body is
// not nil it is sent as JSON.
func (c *client) newRequest(ctx context.Context, method string, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *client) newJsonRequest(ctx context.Context, method string, url string, payload any) (*http.Request, error) {
	body := new(strings.Builder)
	if err := json.NewEncoder(body).Encode(payload); err != nil {
		return nil, err
	}
	return c.newRequest(ctx, method, url, strings.NewReader(body.String()))
}

func trustCa(hc *http.Client, cacerts []string) (*http.Client, error) {
	if len(cacerts) <= 0 {
		return hc, nil
	}

	if hc.Transport == nil {
		hc.Transport = http.DefaultTransport
	}

	tran, ok := hc.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("failed to add ca cert")
	}
	tran = tran.Clone()

	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}

	rootcas := tcc.RootCAs
	if rootcas == nil {
		rootcas = x509.NewCertPool()
		tcc.RootCAs = rootcas
	}
	for _, ca := range cacerts {
		bin, err := base64.StdEncoding.DecodeString(ca)
		if err != nil {
			return nil, err
		}

		if !rootcas.AppendCertsFromPEM(bin) {
			return nil, fmt.Errorf("failed to add cert")
		}
	}

	tran.TLSClientConfig = tcc
	hc.Transport = tran
	return hc, nil
}
