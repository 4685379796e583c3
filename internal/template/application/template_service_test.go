package application

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	shared "github.com/wyfcoding/notificationcenter/internal/shared/domain"
	"github.com/wyfcoding/notificationcenter/internal/template/domain"
	"github.com/wyfcoding/notificationcenter/pkg/db"
	"github.com/wyfcoding/notificationcenter/pkg/idgen"
)

// fakeRepository 内存仓储，按 ID 与租户+名称双向索引
type fakeRepository struct {
	templates map[string]*domain.EmailTemplate
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{templates: make(map[string]*domain.EmailTemplate)}
}

func (r *fakeRepository) Save(_ context.Context, _ *gorm.DB, t *domain.EmailTemplate) error {
	r.templates[t.ID.String()] = t
	t.LoadedVersion = t.Version
	return nil
}

func (r *fakeRepository) Get(_ context.Context, id shared.TemplateID) (*domain.EmailTemplate, error) {
	t, ok := r.templates[id.String()]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return t, nil
}

func (r *fakeRepository) GetByName(_ context.Context, tenantID shared.TenantID, name string) (*domain.EmailTemplate, error) {
	for _, t := range r.templates {
		if t.TenantID.String() == tenantID.String() && t.Name == name && t.Status != domain.StatusDeleted {
			return t, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRepository) ListByTenant(_ context.Context, tenantID shared.TenantID, status domain.TemplateStatus, _, _ int) ([]*domain.EmailTemplate, int64, error) {
	var res []*domain.EmailTemplate
	for _, t := range r.templates {
		if t.TenantID.String() != tenantID.String() || t.Status == domain.StatusDeleted {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		res = append(res, t)
	}
	return res, int64(len(res)), nil
}

// fakePublisher 收集发布的事件
type fakePublisher struct {
	events []shared.Event
}

func (p *fakePublisher) PublishInTx(_ context.Context, _ *gorm.DB, events []shared.Event) error {
	p.events = append(p.events, events...)
	return nil
}

type testEnv struct {
	service   *TemplateService
	repo      *fakeRepository
	publisher *fakePublisher
	mock      sqlmock.Sqlmock
	tenantID  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	require.NoError(t, idgen.Init(1))

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	repo := newFakeRepository()
	publisher := &fakePublisher{}
	command := NewTemplateCommand(&db.DB{DB: gormDB}, repo, publisher, nil)
	query := NewTemplateQuery(repo, domain.NewRenderer(), nil)

	return &testEnv{
		service:   NewTemplateService(command, query),
		repo:      repo,
		publisher: publisher,
		mock:      mock,
		tenantID:  uuid.NewString(),
	}
}

func (e *testEnv) expectTx(n int) {
	for i := 0; i < n; i++ {
		e.mock.ExpectBegin()
		e.mock.ExpectCommit()
	}
}

func (e *testEnv) createCmd() CreateTemplateCommand {
	return CreateTemplateCommand{
		TenantID:  e.tenantID,
		Name:      "welcome-email",
		Subject:   "Welcome {{name}}",
		HTMLBody:  "<p>Hello {{name}}</p>",
		Variables: []string{"name"},
		CreatedBy: "editor-1",
	}
}

func TestCreateTemplate(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(1)

	id, err := env.service.CreateTemplate(context.Background(), env.createCmd())
	require.NoError(t, err)

	dto, err := env.service.GetTemplate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "welcome-email", dto.Name)
	assert.Equal(t, "DRAFT", dto.Status)
	assert.True(t, dto.HasDraft)
}

func TestCreateTemplateNameTaken(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(1)

	_, err := env.service.CreateTemplate(context.Background(), env.createCmd())
	require.NoError(t, err)

	_, err = env.service.CreateTemplate(context.Background(), env.createCmd())
	assert.ErrorIs(t, err, ErrTemplateNameTaken)

	// 名称跨租户不冲突
	env.expectTx(1)
	cmd := env.createCmd()
	cmd.TenantID = uuid.NewString()
	_, err = env.service.CreateTemplate(context.Background(), cmd)
	assert.NoError(t, err)
}

func TestPublishAndRender(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(2)

	id, err := env.service.CreateTemplate(context.Background(), env.createCmd())
	require.NoError(t, err)

	revision, err := env.service.Publish(context.Background(), PublishTemplateCommand{
		TemplateID:  id,
		PublishedBy: "publisher-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, revision)

	rendered, err := env.service.Render(context.Background(), RenderQuery{
		TemplateID: id,
		Values:     map[string]string{"name": "Alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome Alice", rendered.Subject)
	assert.Equal(t, 1, rendered.Revision)

	// 缺少变量渲染报错
	_, err = env.service.Render(context.Background(), RenderQuery{TemplateID: id})
	assert.ErrorIs(t, err, domain.ErrMissingVariable)
}

func TestRenderByRevisionNumber(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(4)

	id, err := env.service.CreateTemplate(context.Background(), env.createCmd())
	require.NoError(t, err)
	_, err = env.service.Publish(context.Background(), PublishTemplateCommand{TemplateID: id, PublishedBy: "p"})
	require.NoError(t, err)

	// 修改并再次发布产生修订 2
	require.NoError(t, env.service.UpdateContent(context.Background(), UpdateContentCommand{
		TemplateID: id,
		Subject:    "Hi {{name}}",
		HTMLBody:   "<p>Hey {{name}}</p>",
		Variables:  []string{"name"},
		UpdatedBy:  "editor-2",
	}))
	revision, err := env.service.Publish(context.Background(), PublishTemplateCommand{TemplateID: id, PublishedBy: "p"})
	require.NoError(t, err)
	assert.Equal(t, 2, revision)

	// 默认渲染最新已发布修订
	rendered, err := env.service.Render(context.Background(), RenderQuery{
		TemplateID: id,
		Values:     map[string]string{"name": "Bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi Bob", rendered.Subject)

	// 指定历史修订
	rendered, err = env.service.Render(context.Background(), RenderQuery{
		TemplateID: id,
		Revision:   1,
		Values:     map[string]string{"name": "Bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome Bob", rendered.Subject)

	// 不存在的修订
	_, err = env.service.Render(context.Background(), RenderQuery{
		TemplateID: id,
		Revision:   9,
		Values:     map[string]string{"name": "Bob"},
	})
	assert.ErrorIs(t, err, domain.ErrNoPublishedRevision)
}

func TestRenderUnpublishedTemplate(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(1)

	id, err := env.service.CreateTemplate(context.Background(), env.createCmd())
	require.NoError(t, err)

	_, err = env.service.Render(context.Background(), RenderQuery{TemplateID: id})
	assert.ErrorIs(t, err, domain.ErrNoPublishedRevision)
}

func TestTemplateLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.expectTx(5)

	id, err := env.service.CreateTemplate(context.Background(), env.createCmd())
	require.NoError(t, err)
	_, err = env.service.Publish(context.Background(), PublishTemplateCommand{TemplateID: id, PublishedBy: "p"})
	require.NoError(t, err)

	require.NoError(t, env.service.Archive(context.Background(), LifecycleCommand{TemplateID: id, OperatedBy: "admin"}))
	require.NoError(t, env.service.Restore(context.Background(), LifecycleCommand{TemplateID: id, OperatedBy: "admin"}))
	require.NoError(t, env.service.Archive(context.Background(), LifecycleCommand{TemplateID: id, OperatedBy: "admin"}))

	env.expectTx(1)
	require.NoError(t, env.service.Delete(context.Background(), LifecycleCommand{TemplateID: id, OperatedBy: "admin"}))

	dto, err := env.service.GetTemplate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "DELETED", dto.Status)

	// 删除后名称可复用
	env.expectTx(1)
	_, err = env.service.CreateTemplate(context.Background(), env.createCmd())
	assert.NoError(t, err)
}
