package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/companion_go_server/internal/model"
	"github.com/qs3c/companion_go_server/internal/pkg/queue"
	"github.com/qs3c/companion_go_server/internal/repository"
	"github.com/qs3c/companion_go_server/internal/service"
	"github.com/qs3c/companion_go_server/internal/testutil"
)

type fakeGenerator struct {
	url   string
	err   error
	calls int
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, prompt, style, loraKey string) (string, error) {
	f.calls++
	return f.url, f.err
}

type fakeTransport struct {
	texts  []string
	images []string
}

func (f *fakeTransport) SendText(ctx context.Context, chatID, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeTransport) SendImage(ctx context.Context, chatID, imageURL string) error {
	f.images = append(f.images, imageURL)
	return nil
}

func (f *fakeTransport) SendOptions(ctx context.Context, chatID, text string, options []service.Option) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeTransport) AckCallback(ctx context.Context, token string) error {
	return nil
}

func setupProcessor(t *testing.T, db *gorm.DB, gen *fakeGenerator, transport *fakeTransport) *Processor {
	t.Helper()

	return NewProcessor(
		repository.NewImageJobRepository(db),
		service.NewUserService(repository.NewUserRepository(db)),
		service.NewQuotaService(),
		gen,
		nil, // no OSS in tests, original URL passes through
		transport,
	)
}

func createQueuedJob(t *testing.T, db *gorm.DB, user *model.User, characterID int64) (*model.ImageJob, *queue.ImageJobMessage) {
	t.Helper()

	job := &model.ImageJob{
		UserID:      user.ID,
		CharacterID: characterID,
		Prompt:      "sunset picnic",
		Style:       "Realistic",
		LoraKey:     "luna_v1",
		Status:      model.ImageJobStatusQueued,
	}
	require.NoError(t, db.Create(job).Error)

	msg := &queue.ImageJobMessage{
		JobID:       job.ID,
		UserID:      user.ID,
		ChatID:      user.ID,
		CharacterID: characterID,
		Prompt:      job.Prompt,
		Style:       job.Style,
		LoraKey:     job.LoraKey,
	}
	return job, msg
}

func TestProcessor_Process_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	character := testutil.TestCharacter(t, db)
	job, msg := createQueuedJob(t, db, user, character.ID)

	gen := &fakeGenerator{url: "https://img.example.com/out.png"}
	transport := &fakeTransport{}
	p := setupProcessor(t, db, gen, transport)

	err := p.Process(context.Background(), msg)
	require.NoError(t, err)

	var updated model.ImageJob
	require.NoError(t, db.First(&updated, job.ID).Error)
	assert.Equal(t, model.ImageJobStatusDone, updated.Status)
	assert.Equal(t, "https://img.example.com/out.png", updated.ImageURL)
	assert.NotNil(t, updated.StartedAt)
	assert.NotNil(t, updated.CompletedAt)

	require.Len(t, transport.images, 1)
	assert.Equal(t, "https://img.example.com/out.png", transport.images[0])

	var userAfter model.User
	require.NoError(t, db.First(&userAfter, "id = ?", user.ID).Error)
	assert.Equal(t, 1, userAfter.DailyImgCount)
}

func TestProcessor_Process_QuotaExhaustedAtExecution(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	// Quota was fine at enqueue time but is exhausted now
	user := testutil.TestUser(t, db, testutil.WithImgCount(service.FreeImageLimit))
	character := testutil.TestCharacter(t, db)
	job, msg := createQueuedJob(t, db, user, character.ID)

	gen := &fakeGenerator{url: "https://img.example.com/out.png"}
	transport := &fakeTransport{}
	p := setupProcessor(t, db, gen, transport)

	err := p.Process(context.Background(), msg)
	require.NoError(t, err)

	var updated model.ImageJob
	require.NoError(t, db.First(&updated, job.ID).Error)
	assert.Equal(t, model.ImageJobStatusSkipped, updated.Status)

	// No generation attempt, nothing delivered
	assert.Equal(t, 0, gen.calls)
	assert.Empty(t, transport.images)
}

func TestProcessor_Process_PremiumBypassesQuota(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db,
		testutil.WithPremium(),
		testutil.WithImgCount(100),
	)
	character := testutil.TestCharacter(t, db)
	_, msg := createQueuedJob(t, db, user, character.ID)

	gen := &fakeGenerator{url: "https://img.example.com/out.png"}
	transport := &fakeTransport{}
	p := setupProcessor(t, db, gen, transport)

	err := p.Process(context.Background(), msg)
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.Len(t, transport.images, 1)
}

func TestProcessor_Process_GenerationFails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	character := testutil.TestCharacter(t, db)
	job, msg := createQueuedJob(t, db, user, character.ID)

	gen := &fakeGenerator{err: errors.New("backend timeout")}
	transport := &fakeTransport{}
	p := setupProcessor(t, db, gen, transport)

	err := p.Process(context.Background(), msg)
	assert.Error(t, err)

	var updated model.ImageJob
	require.NoError(t, db.First(&updated, job.ID).Error)
	assert.Equal(t, model.ImageJobStatusFailed, updated.Status)
	assert.Contains(t, updated.ErrorMessage, "backend timeout")

	// Failed generation must not consume quota
	var userAfter model.User
	require.NoError(t, db.First(&userAfter, "id = ?", user.ID).Error)
	assert.Equal(t, 0, userAfter.DailyImgCount)
}

func TestProcessor_Process_BackendNotConfigured(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	character := testutil.TestCharacter(t, db)
	job, msg := createQueuedJob(t, db, user, character.ID)

	// Unconfigured backend returns empty URL without error
	gen := &fakeGenerator{url: ""}
	transport := &fakeTransport{}
	p := setupProcessor(t, db, gen, transport)

	err := p.Process(context.Background(), msg)
	require.NoError(t, err)

	var updated model.ImageJob
	require.NoError(t, db.First(&updated, job.ID).Error)
	assert.Equal(t, model.ImageJobStatusSkipped, updated.Status)
	assert.Empty(t, transport.images)
}

func TestProcessor_Process_JobNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	p := setupProcessor(t, db, &fakeGenerator{}, &fakeTransport{})

	err := p.Process(context.Background(), &queue.ImageJobMessage{JobID: 99999})
	assert.Error(t, err)
}
