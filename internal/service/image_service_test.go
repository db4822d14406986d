package service

import (
	"PlanForge/internal/pkg/llm"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageModel struct {
	err   error
	calls []*llm.ImageRequest
}

func (f *fakeImageModel) Generate(ctx context.Context, req *llm.ImageRequest) (*llm.ImageResult, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ImageResult{Data: []byte("img-" + req.PostID), MimeType: "image/png"}, nil
}

type fakeStorage struct {
	uploads    map[string][]byte
	failUpload bool
	tempData   map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		uploads:  make(map[string][]byte),
		tempData: make(map[string][]byte),
	}
}

func (f *fakeStorage) UploadImage(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if f.failUpload {
		return "", errors.New("storage unavailable")
	}
	f.uploads[objectName] = data
	return "https://cdn.example.com/" + objectName, nil
}

func (f *fakeStorage) GetTempObject(ctx context.Context, key string) ([]byte, string, error) {
	data, ok := f.tempData[key]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return data, "image/jpeg", nil
}

func newTestImageService(gen llm.ImageModel, store *PlanStore, storage ObjectStorage, waits *[]time.Duration) *imageServiceImpl {
	return &imageServiceImpl{
		generator: gen,
		store:     store,
		storage:   storage,
		interval:  10 * time.Second,
		policy:    llm.RetryPolicy{Retries: 0, Delay: time.Millisecond, Backoff: 1},
		waitFn: func(ctx context.Context, d time.Duration) error {
			*waits = append(*waits, d)
			return ctx.Err()
		},
	}
}

func TestFillPlanImagesSequential(t *testing.T) {
	store := NewPlanStore()
	store.Initialize(testPlan())

	gen := &fakeImageModel{}
	storage := newFakeStorage()
	var waits []time.Duration
	svc := newTestImageService(gen, store, storage, &waits)

	snap, _ := store.Snapshot()
	svc.FillPlanImages(context.Background(), snap.Posts, snap.Tone, nil)

	// 按提交顺序串行，首帖前不等待
	require.Len(t, gen.calls, 3)
	assert.Equal(t, "p1", gen.calls[0].PostID)
	assert.Equal(t, "p2", gen.calls[1].PostID)
	assert.Equal(t, "p3", gen.calls[2].PostID)
	assert.Len(t, waits, 2)

	after, _ := store.Snapshot()
	for _, p := range after.Posts {
		assert.NotEmpty(t, p.ImageURL, "post %s", p.ID)
	}
}

func TestFillPlanImagesCancel(t *testing.T) {
	store := NewPlanStore()
	store.Initialize(testPlan())

	gen := &fakeImageModel{}
	storage := newFakeStorage()

	ctx, cancel := context.WithCancel(context.Background())
	svc := &imageServiceImpl{
		generator: gen,
		store:     store,
		storage:   storage,
		interval:  10 * time.Second,
		policy:    llm.RetryPolicy{Retries: 0, Delay: time.Millisecond, Backoff: 1},
		waitFn: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	snap, _ := store.Snapshot()
	svc.FillPlanImages(ctx, snap.Posts, snap.Tone, nil)

	// 首帖完成后取消，后续帖子不再请求
	assert.Len(t, gen.calls, 1)

	after, _ := store.Snapshot()
	assert.NotEmpty(t, after.Posts[0].ImageURL)
	assert.Empty(t, after.Posts[1].ImageURL)
	assert.Empty(t, after.Posts[2].ImageURL)
}

func TestGenerateOnePlaceholderFallback(t *testing.T) {
	t.Run("生成失败时占位图确定且可复现", func(t *testing.T) {
		store := NewPlanStore()
		store.Initialize(testPlan())

		gen := &fakeImageModel{err: errors.New("model offline")}
		storage := newFakeStorage()
		var waits []time.Duration
		svc := newTestImageService(gen, store, storage, &waits)

		post, _ := store.Post("p1")
		first := svc.GenerateOne(context.Background(), post, "轻松专业", "")
		second := svc.GenerateOne(context.Background(), post, "轻松专业", "")

		assert.Equal(t, first, second)
		assert.Contains(t, first, "placeholders/p1.jpg")

		// 占位图内容同样确定
		assert.Equal(t, storage.uploads["placeholders/p1.jpg"], renderPlaceholder("p1"))
	})

	t.Run("占位图上传也失败时回退外部引用", func(t *testing.T) {
		store := NewPlanStore()
		store.Initialize(testPlan())

		gen := &fakeImageModel{err: errors.New("model offline")}
		storage := newFakeStorage()
		storage.failUpload = true
		var waits []time.Duration
		svc := newTestImageService(gen, store, storage, &waits)

		post, _ := store.Post("p2")
		url := svc.GenerateOne(context.Background(), post, "轻松专业", "")
		assert.Equal(t, FallbackPlaceholderURL("p2"), url)
	})

	t.Run("不同帖子的占位图互不相同", func(t *testing.T) {
		a := renderPlaceholder("p1")
		b := renderPlaceholder("p2")
		require.NotEmpty(t, a)
		require.NotEmpty(t, b)
		assert.NotEqual(t, a, b)
	})
}

func TestGenerateOneReference(t *testing.T) {
	store := NewPlanStore()
	store.Initialize(testPlan())

	gen := &fakeImageModel{}
	storage := newFakeStorage()
	storage.tempData["2026/03/01/ref.jpg"] = []byte("ref-bytes")
	var waits []time.Duration
	svc := newTestImageService(gen, store, storage, &waits)

	post, _ := store.Post("p1")

	t.Run("参考图注入请求", func(t *testing.T) {
		gen.calls = nil
		_ = svc.GenerateOne(context.Background(), post, "轻松专业", "2026/03/01/ref.jpg")

		require.Len(t, gen.calls, 1)
		require.NotNil(t, gen.calls[0].Reference)
		assert.Equal(t, []byte("ref-bytes"), gen.calls[0].Reference.Data)
		assert.Equal(t, "image/jpeg", gen.calls[0].Reference.MimeType)
	})

	t.Run("参考图读取失败时忽略并继续", func(t *testing.T) {
		gen.calls = nil
		url := svc.GenerateOne(context.Background(), post, "轻松专业", "missing-key")

		require.Len(t, gen.calls, 1)
		assert.Nil(t, gen.calls[0].Reference)
		assert.NotEmpty(t, url)
	})
}
