package performance

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commentRepository "github.com/MaksimBoltov/comments/comments/repository"
	"github.com/MaksimBoltov/comments/comments/seed"
	"github.com/MaksimBoltov/comments/comments/services"
	platformconfig "github.com/MaksimBoltov/comments/internal/platform/config"
	"github.com/MaksimBoltov/comments/internal/testutil"
)

func memoryService(tb testing.TB) services.CommentService {
	tb.Helper()
	store, err := seed.MemoryStore(context.Background())
	require.NoError(tb, err)

	cfg, err := platformconfig.LoadFromMap(map[string]string{"DB_TYPE": platformconfig.DatabaseTypeMemory})
	require.NoError(tb, err)
	return services.NewCommentService(store.Comments(), store.Users(), store.EntityTypes(), cfg)
}

func payload(i int) map[string]interface{} {
	return map[string]interface{}{
		"author":             "maksim",
		"text":               fmt.Sprintf("benchmark comment %d", i),
		"parent_entity_uuid": seed.RootCommentID.String(),
		"parent_entity_type": "Comment",
	}
}

// Concurrent writers and readers must leave the thread consistent
func TestCommentService_ConcurrentLoad(t *testing.T) {
	service := memoryService(t)
	ctx := context.Background()

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	errs := make(chan error, writers*perWriter*2)

	for w := 0; w < writers; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if _, err := service.CreateComment(ctx, payload(w*perWriter+i)); err != nil {
					errs <- err
				}
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if _, err := service.GetThread(ctx, seed.RootCommentID.String()); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error under load: %v", err)
	}

	node, err := service.GetThread(ctx, seed.RootCommentID.String())
	require.NoError(t, err)
	assert.Len(t, node.Child, 4+writers*perWriter)
}

func BenchmarkCommentService_CreateComment_Memory(b *testing.B) {
	service := memoryService(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := service.CreateComment(ctx, payload(i)); err != nil {
			b.Fatalf("create comment error: %v", err)
		}
	}
}

func BenchmarkCommentService_GetThread_Memory(b *testing.B) {
	service := memoryService(b)
	ctx := context.Background()
	root := seed.RootCommentID.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := service.GetThread(ctx, root); err != nil {
			b.Fatalf("get thread error: %v", err)
		}
	}
}

func BenchmarkCommentService_ExportUserHistory_Memory(b *testing.B) {
	service := memoryService(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := service.ExportUserHistory(ctx, "user", services.DateRange{}, io.Discard); err != nil {
			b.Fatalf("export error: %v", err)
		}
	}
}

func TestCommentService_PostgresLoad(t *testing.T) {
	if !testutil.ShouldRunDatabaseTests() {
		t.Skip("set RUN_DB_TESTS=1 to run performance tests")
	}

	client := testutil.NewIsolatedPostgres(t)
	ctx := context.Background()
	users := commentRepository.NewPostgresUserRepository(client)
	types := commentRepository.NewPostgresEntityTypeRepository(client)
	comments := commentRepository.NewPostgresCommentRepository(client)
	_, err := seed.DemoData(ctx, users, types, comments)
	require.NoError(t, err)

	cfg, err := platformconfig.LoadFromMap(map[string]string{})
	require.NoError(t, err)
	service := services.NewCommentService(comments, users, types, cfg)

	const workers, perWorker = 4, 20
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := service.CreateComment(ctx, payload(w*perWorker+i))
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	page, err := service.ListFirstLevel(ctx, seed.RootCommentID.String(), services.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(4+workers*perWorker), page.Count)
}
