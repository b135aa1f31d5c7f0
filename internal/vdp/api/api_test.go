package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimyag/vdp/internal/vdp/entity"
	"github.com/jimyag/vdp/pkg/apierror"
	"github.com/jimyag/vdp/pkg/ginx"
)

type fakeDeploymentService struct {
	createFn    func(ctx context.Context, req *entity.CreateDeploymentRequest) (*entity.CreateDeploymentResponse, error)
	terminateFn func(ctx context.Context, req *entity.TerminateDeploymentRequest) (*entity.DeploymentStateChange, error)
}

func (f *fakeDeploymentService) CreateDeployment(ctx context.Context, req *entity.CreateDeploymentRequest) (*entity.CreateDeploymentResponse, error) {
	return f.createFn(ctx, req)
}

func (f *fakeDeploymentService) DescribeDeployments(ctx context.Context, req *entity.DescribeDeploymentsRequest) (*entity.DescribeDeploymentsResponse, error) {
	return &entity.DescribeDeploymentsResponse{Deployments: []entity.Deployment{}}, nil
}

func (f *fakeDeploymentService) StartDeployment(ctx context.Context, req *entity.StartDeploymentRequest) (*entity.DeploymentStateChange, error) {
	return &entity.DeploymentStateChange{DeploymentID: req.DeploymentID}, nil
}

func (f *fakeDeploymentService) StopDeployment(ctx context.Context, req *entity.StopDeploymentRequest) (*entity.DeploymentStateChange, error) {
	return &entity.DeploymentStateChange{DeploymentID: req.DeploymentID}, nil
}

func (f *fakeDeploymentService) TerminateDeployment(ctx context.Context, req *entity.TerminateDeploymentRequest) (*entity.DeploymentStateChange, error) {
	return f.terminateFn(ctx, req)
}

func (f *fakeDeploymentService) CreateSnapshot(ctx context.Context, req *entity.CreateSnapshotRequest) (*entity.CreateSnapshotResponse, error) {
	return &entity.CreateSnapshotResponse{}, nil
}

func (f *fakeDeploymentService) RestoreSnapshot(ctx context.Context, req *entity.RestoreSnapshotRequest) (*entity.DeploymentStateChange, error) {
	return &entity.DeploymentStateChange{}, nil
}

func (f *fakeDeploymentService) DescribeSnapshots(ctx context.Context, req *entity.DescribeSnapshotsRequest) (*entity.DescribeSnapshotsResponse, error) {
	return &entity.DescribeSnapshotsResponse{}, nil
}

func (f *fakeDeploymentService) DescribeUsage(ctx context.Context, req *entity.DescribeUsageRequest) (*entity.DescribeUsageResponse, error) {
	return &entity.DescribeUsageResponse{}, nil
}

type fakeCatalogService struct {
	nodes []entity.Node
}

func (f *fakeCatalogService) RegisterNode(ctx context.Context, req *entity.RegisterNodeRequest) (*entity.RegisterNodeResponse, error) {
	return &entity.RegisterNodeResponse{Node: &entity.Node{ID: "node-1", Name: req.Name}}, nil
}

func (f *fakeCatalogService) DescribeNodes(ctx context.Context) (*entity.DescribeNodesResponse, error) {
	return &entity.DescribeNodesResponse{Nodes: f.nodes}, nil
}

func (f *fakeCatalogService) DescribeCapacity(ctx context.Context) (*entity.DescribeCapacityResponse, error) {
	return &entity.DescribeCapacityResponse{Nodes: []entity.NodeCapacity{}}, nil
}

func (f *fakeCatalogService) CreatePlan(ctx context.Context, req *entity.CreatePlanRequest) (*entity.CreatePlanResponse, error) {
	return &entity.CreatePlanResponse{Plan: &entity.Plan{ID: "plan-1", Name: req.Name}}, nil
}

func (f *fakeCatalogService) DescribePlans(ctx context.Context) (*entity.DescribePlansResponse, error) {
	return &entity.DescribePlansResponse{}, nil
}

func (f *fakeCatalogService) RegisterTemplate(ctx context.Context, req *entity.RegisterTemplateRequest) (*entity.RegisterTemplateResponse, error) {
	return &entity.RegisterTemplateResponse{Template: &entity.OSTemplate{ID: "tmpl-1"}}, nil
}

func (f *fakeCatalogService) DescribeTemplates(ctx context.Context) (*entity.DescribeTemplatesResponse, error) {
	return &entity.DescribeTemplatesResponse{}, nil
}

func (f *fakeCatalogService) SetQuota(ctx context.Context, req *entity.SetQuotaRequest) (*entity.SetQuotaResponse, error) {
	return &entity.SetQuotaResponse{}, nil
}

func (f *fakeCatalogService) DescribeQuota(ctx context.Context, req *entity.DescribeQuotaRequest) (*entity.DescribeQuotaResponse, error) {
	return &entity.DescribeQuotaResponse{}, nil
}

func newTestEngine(deploymentService DeploymentServiceInterface, catalogService CatalogServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	root := engine.Group("/api")
	NewDeployment(deploymentService).RegisterRoutes(root)
	NewCatalog(catalogService).RegisterRoutes(root)
	return engine
}

func TestDeploymentRoutes(t *testing.T) {
	t.Parallel()

	t.Run("create deployment returns payload", func(t *testing.T) {
		t.Parallel()
		svc := &fakeDeploymentService{
			createFn: func(ctx context.Context, req *entity.CreateDeploymentRequest) (*entity.CreateDeploymentResponse, error) {
				return &entity.CreateDeploymentResponse{
					Deployment:      &entity.Deployment{ID: "vd-1", State: entity.DeploymentStateRunning, UserID: req.UserID},
					InitialPassword: "secret",
				}, nil
			},
		}
		engine := newTestEngine(svc, &fakeCatalogService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/deployments",
			strings.NewReader(`{"user_id":"user-1","plan_id":"plan-1","template_id":"tmpl-1"}`))
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp entity.CreateDeploymentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "vd-1", resp.Deployment.ID)
		assert.Equal(t, "user-1", resp.Deployment.UserID)
		assert.Equal(t, "secret", resp.InitialPassword)
	})

	t.Run("quota exceeded maps to 403", func(t *testing.T) {
		t.Parallel()
		svc := &fakeDeploymentService{
			createFn: func(ctx context.Context, req *entity.CreateDeploymentRequest) (*entity.CreateDeploymentResponse, error) {
				return nil, apierror.WrapError(apierror.ErrQuotaExceeded, "vm count limit reached", nil)
			},
		}
		engine := newTestEngine(svc, &fakeCatalogService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/deployments", strings.NewReader(`{"user_id":"user-1"}`))
		engine.ServeHTTP(w, req)

		assert.Equal(t, apierror.ErrQuotaExceeded.HTTPStatus, w.Code)
		var resp ginx.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, apierror.ErrQuotaExceeded.Code, resp.Error.Code)
	})

	t.Run("terminate not found maps to 404", func(t *testing.T) {
		t.Parallel()
		svc := &fakeDeploymentService{
			terminateFn: func(ctx context.Context, req *entity.TerminateDeploymentRequest) (*entity.DeploymentStateChange, error) {
				return nil, apierror.WrapError(apierror.ErrResourceNotFound, "deployment not found", nil)
			},
		}
		engine := newTestEngine(svc, &fakeCatalogService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/deployments/terminate",
			strings.NewReader(`{"deployment_id":"vd-missing"}`))
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRequestLoggerInjection(t *testing.T) {
	t.Parallel()

	// handler 把 *gin.Context 当 context.Context 传给下游
	// zerolog.Ctx 必须能取到中间件注入的 logger
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	gin.SetMode(gin.TestMode)
	engine := newEngine(logger)
	engine.POST("/api/deployments/describe", ginx.Handle(func(ctx *gin.Context, req *entity.DescribeDeploymentsRequest) (*entity.DescribeDeploymentsResponse, error) {
		zerolog.Ctx(ctx).Info().Msg("describe deployments")
		return &entity.DescribeDeploymentsResponse{Deployments: []entity.Deployment{}}, nil
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/deployments/describe", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), `"method":"POST"`)
	assert.Contains(t, buf.String(), `"path":"/api/deployments/describe"`)
	assert.Contains(t, buf.String(), "describe deployments")
}

func TestCatalogRoutes(t *testing.T) {
	t.Parallel()

	t.Run("register and describe nodes", func(t *testing.T) {
		t.Parallel()
		svc := &fakeCatalogService{nodes: []entity.Node{{ID: "node-1", Name: "node-a"}}}
		engine := newTestEngine(&fakeDeploymentService{}, svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/nodes/register",
			strings.NewReader(`{"name":"node-a","total_vcpus":8,"total_mem_mb":8192,"total_disk_gb":100}`))
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodPost, "/api/nodes/describe", nil)
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp entity.DescribeNodesResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Nodes, 1)
	})

	t.Run("describe capacity", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(&fakeDeploymentService{}, &fakeCatalogService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/capacity/describe", nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
