package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codequest/codequest-api/internal/domain"
	"github.com/codequest/codequest-api/internal/store"
)

// newTestTaskService assembles a TaskService over the given mocks with a
// pass-through enricher and deletion coordinator.
func newTestTaskService(
	t *testing.T,
	tasks *MockTaskStore,
	users *MockUserStore,
	files *MockFileStore,
) TaskService {
	t.Helper()

	enricher, err := NewAuthorEnricher(users, nil)
	require.NoError(t, err)

	deleter, err := NewDeletionCoordinator(tasks, files, nil)
	require.NoError(t, err)

	svc, err := NewTaskService(tasks, enricher, deleter, nil)
	require.NoError(t, err)

	return svc
}

func TestNewTaskService(t *testing.T) {
	tasks := new(MockTaskStore)
	users := new(MockUserStore)
	files := new(MockFileStore)

	enricher, err := NewAuthorEnricher(users, nil)
	require.NoError(t, err)
	deleter, err := NewDeletionCoordinator(tasks, files, nil)
	require.NoError(t, err)

	tests := []struct {
		name        string
		tasks       store.TaskStore
		enricher    *AuthorEnricher
		deleter     *DeletionCoordinator
		expectError bool
	}{
		{name: "nil task store", tasks: nil, enricher: enricher, deleter: deleter, expectError: true},
		{name: "nil enricher", tasks: tasks, enricher: nil, deleter: deleter, expectError: true},
		{name: "nil deleter", tasks: tasks, enricher: enricher, deleter: nil, expectError: true},
		{name: "all dependencies provided", tasks: tasks, enricher: enricher, deleter: deleter, expectError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewTaskService(tt.tasks, tt.enricher, tt.deleter, nil)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()
	caller := domain.Caller{ID: primitive.NewObjectID(), Role: domain.RoleMember}

	input := CreateTaskInput{
		Title:       "Two Sum",
		Description: "Find two numbers that add up to a target",
		Level:       1,
		Draft:       true,
	}

	t.Run("creates task when title is free", func(t *testing.T) {
		tasks := new(MockTaskStore)
		tasks.On("GetByTitle", ctx, "Two Sum").Return(nil, store.ErrTaskNotFound)
		tasks.On("Create", ctx, mock.AnythingOfType("*domain.Task")).Return(nil)

		svc := newTestTaskService(t, tasks, new(MockUserStore), new(MockFileStore))

		task, err := svc.CreateTask(ctx, input, caller)
		require.NoError(t, err)

		assert.Equal(t, "Two Sum", task.Title)
		assert.Equal(t, caller.ID, task.Author)
		assert.Equal(t, domain.TaskStatusPending, task.Status)
		assert.True(t, task.Draft)
		assert.Empty(t, task.Comments)
		tasks.AssertExpectations(t)
	})

	t.Run("rejects duplicate title", func(t *testing.T) {
		existing := testTask(t, primitive.NewObjectID(), "Two Sum")

		tasks := new(MockTaskStore)
		tasks.On("GetByTitle", ctx, "Two Sum").Return(existing, nil)

		svc := newTestTaskService(t, tasks, new(MockUserStore), new(MockFileStore))

		task, err := svc.CreateTask(ctx, input, caller)
		assert.ErrorIs(t, err, ErrTaskExists)
		assert.Nil(t, task)
		tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("index backstop maps to the same error", func(t *testing.T) {
		// Two concurrent creates can both pass the pre-check; the loser of
		// the race gets the duplicate error from the insert instead.
		tasks := new(MockTaskStore)
		tasks.On("GetByTitle", ctx, "Two Sum").Return(nil, store.ErrTaskNotFound)
		tasks.On("Create", ctx, mock.AnythingOfType("*domain.Task")).Return(store.ErrTitleExists)

		svc := newTestTaskService(t, tasks, new(MockUserStore), new(MockFileStore))

		_, err := svc.CreateTask(ctx, input, caller)
		assert.ErrorIs(t, err, ErrTaskExists)
	})

	t.Run("uniqueness check failure is wrapped", func(t *testing.T) {
		tasks := new(MockTaskStore)
		tasks.On("GetByTitle", ctx, "Two Sum").Return(nil, errors.New("connection reset"))

		svc := newTestTaskService(t, tasks, new(MockUserStore), new(MockFileStore))

		_, err := svc.CreateTask(ctx, input, caller)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrTaskExists)
	})
}

func TestTaskService_GetTask(t *testing.T) {
	ctx := context.Background()

	t.Run("returns enriched task", func(t *testing.T) {
		author := testUser(t, "alice")
		task := testTask(t, author.ID, "Two Sum")

		tasks := new(MockTaskStore)
		tasks.On("GetByID", ctx, task.ID).Return(task, nil)
		users := new(MockUserStore)
		users.On("GetByID", ctx, author.ID).Return(author, nil)

		svc := newTestTaskService(t, tasks, users, new(MockFileStore))

		enriched, err := svc.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID.Hex(), enriched.ID)
		assert.Equal(t, "alice", enriched.Author.Username)
	})

	t.Run("missing task", func(t *testing.T) {
		id := primitive.NewObjectID()
		tasks := new(MockTaskStore)
		tasks.On("GetByID", ctx, id).Return(nil, store.ErrTaskNotFound)

		svc := newTestTaskService(t, tasks, new(MockUserStore), new(MockFileStore))

		_, err := svc.GetTask(ctx, id)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	newTitle := "Three Sum"
	input := UpdateTaskInput{Title: &newTitle}

	t.Run("author may edit", func(t *testing.T) {
		author := domain.Caller{ID: primitive.NewObjectID(), Role: domain.RoleMember}
		task := testTask(t, author.ID, "Two Sum")

		tasks := new(MockTaskStore)
		tasks.On("GetByID", ctx, task.ID).Return(task, nil)
		tasks.On("UpdateFields", ctx, task.ID, mock.MatchedBy(func(p store.TaskPatch) bool {
			return p.Title != nil && *p.Title == "Three Sum" && p.Status == nil && p.Draft == nil
		})).Return(task, nil)

		svc := newTestTaskService(t, tasks, new(MockUserStore), new(MockFileStore))

		_, err := svc.UpdateTask(ctx, task.ID, input, author)
		assert.NoError(t, err)
		tasks.AssertExpectations(t)
	})

	t.Run("admin may edit someone else's task", func(t *testing.T) {
		task := testTask(t, primitive.NewObjectID(), "Two Sum")
		admin := domain.Caller{ID: primitive.NewObjectID(), Role: domain.RoleAdmin}

		tasks := new(MockTaskStore)
		tasks.On("GetByID", ctx, task.ID).Return(task, nil)
		tasks.On("UpdateFields", ctx, task.ID, mock.AnythingOfType("store.TaskPatch")).Return(task, nil)

		svc := newTestTaskService(t, tasks, new(MockUserStore), new(MockFileStore))

		_, err := svc.UpdateTask(ctx, task.ID, input, admin)
		assert.NoError(t, err)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		task := testTask(t, primitive.NewObjectID(), "Two Sum")
		stranger := domain.Caller{ID: primitive.NewObjectID(), Role: domain.RoleMember}

		tasks := new(MockTaskStore)
		tasks.On("GetByID", ctx, task.ID).Return(task, nil)

		svc := newTestTaskService(t, tasks, new(MockUserStore), new(MockFileStore))

		_, err := svc.UpdateTask(ctx, task.ID, input, stranger)
		assert.ErrorIs(t, err, ErrUnauthorized)
		tasks.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("task deleted between read and write", func(t *testing.T) {
		author := domain.Caller{ID: primitive.NewObjectID(), Role: domain.RoleMember}
		task := testTask(t, author.ID, "Two Sum")

		tasks := new(MockTaskStore)
		tasks.On("GetByID", ctx, task.ID).Return(task, nil)
		tasks.On("UpdateFields", ctx, task.ID, mock.AnythingOfType("store.TaskPatch")).
			Return(nil, store.ErrTaskNotFound)

		svc := newTestTaskService(t, tasks, new(MockUserStore), new(MockFileStore))

		_, err := svc.UpdateTask(ctx, task.ID, input, author)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_AuditTask(t *testing.T) {
	ctx := context.Background()
	input := AuditInput{Status: domain.TaskStatusApproved}

	t.Run("other member may audit", func(t *testing.T) {
		task := testTask(t, primitive.NewObjectID(), "Two Sum")
		auditor := domain.Caller{ID: primitive.NewObjectID(), Role: domain.RoleMember}

		tasks := new(MockTaskStore)
		tasks.On("GetByID", ctx, task.ID).Return(task, nil)
		tasks.On("UpdateFields", ctx, task.ID, mock.MatchedBy(func(p store.TaskPatch) bool {
			return p.Status != nil && *p.Status == domain.TaskStatusApproved
		})).Return(task, nil)

		svc := newTestTaskService(t, tasks, new(MockUserStore), new(MockFileStore))

		_, err := svc.AuditTask(ctx, task.ID, input, auditor)
		assert.NoError(t, err)
		tasks.AssertExpectations(t)
	})

	t.Run("author may not audit own task", func(t *testing.T) {
		author := domain.Caller{ID: primitive.NewObjectID(), Role: domain.RoleMember}
		task := testTask(t, author.ID, "Two Sum")

		tasks := new(MockTaskStore)
		tasks.On("GetByID", ctx, task.ID).Return(task, nil)

		svc := newTestTaskService(t, tasks, new(MockUserStore), new(MockFileStore))

		_, err := svc.AuditTask(ctx, task.ID, input, author)
		assert.ErrorIs(t, err, ErrSelfAudit)
	})

	t.Run("admin author is still blocked", func(t *testing.T) {
		// Being an admin buys nothing here; the separation-of-duties check
		// looks only at authorship.
		adminAuthor := domain.Caller{ID: primitive.NewObjectID(), Role: domain.RoleAdmin}
		task := testTask(t, adminAuthor.ID, "Two Sum")

		tasks := new(MockTaskStore)
		tasks.On("GetByID", ctx, task.ID).Return(task, nil)

		svc := newTestTaskService(t, tasks, new(MockUserStore), new(MockFileStore))

		_, err := svc.AuditTask(ctx, task.ID, input, adminAuthor)
		assert.ErrorIs(t, err, ErrSelfAudit)
		tasks.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTaskService_SetDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("toggles without ownership check", func(t *testing.T) {
		task := testTask(t, primitive.NewObjectID(), "Two Sum")

		tasks := new(MockTaskStore)
		tasks.On("GetByID", ctx, task.ID).Return(task, nil)
		tasks.On("UpdateFields", ctx, task.ID, mock.MatchedBy(func(p store.TaskPatch) bool {
			return p.Draft != nil && *p.Draft == false
		})).Return(task, nil)

		svc := newTestTaskService(t, tasks, new(MockUserStore), new(MockFileStore))

		_, err := svc.SetDraft(ctx, task.ID, false)
		assert.NoError(t, err)
		tasks.AssertExpectations(t)
	})

	t.Run("missing task", func(t *testing.T) {
		id := primitive.NewObjectID()
		tasks := new(MockTaskStore)
		tasks.On("GetByID", ctx, id).Return(nil, store.ErrTaskNotFound)

		svc := newTestTaskService(t, tasks, new(MockUserStore), new(MockFileStore))

		_, err := svc.SetDraft(ctx, id, true)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	ctx := context.Background()

	t.Run("author delete acks with TASK_DELETED", func(t *testing.T) {
		author := domain.Caller{ID: primitive.NewObjectID(), Role: domain.RoleMember}
		task := testTask(t, author.ID, "Two Sum")
		task.Files = []domain.FileRef{{Key: "tasks/a.txt", URL: "https://cdn/a.txt"}}

		tasks := new(MockTaskStore)
		files := new(MockFileStore)
		tasks.On("GetByID", ctx, task.ID).Return(task, nil)
		files.On("DeleteFiles", ctx, []string{"tasks/a.txt"}).Return(nil)
		tasks.On("Delete", ctx, task.ID).Return(nil)

		svc := newTestTaskService(t, tasks, new(MockUserStore), files)

		ack, err := svc.DeleteTask(ctx, task.ID, author)
		require.NoError(t, err)
		assert.True(t, ack.OK)
		assert.Equal(t, CodeTaskDeleted, ack.Code)
		tasks.AssertExpectations(t)
		files.AssertExpectations(t)
	})

	t.Run("stranger is rejected before any deletion", func(t *testing.T) {
		task := testTask(t, primitive.NewObjectID(), "Two Sum")
		stranger := domain.Caller{ID: primitive.NewObjectID(), Role: domain.RoleMember}

		tasks := new(MockTaskStore)
		files := new(MockFileStore)
		tasks.On("GetByID", ctx, task.ID).Return(task, nil)

		svc := newTestTaskService(t, tasks, new(MockUserStore), files)

		_, err := svc.DeleteTask(ctx, task.ID, stranger)
		assert.ErrorIs(t, err, ErrUnauthorized)
		files.AssertNotCalled(t, "DeleteFiles", mock.Anything, mock.Anything)
		tasks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("file delete failure aborts before the record", func(t *testing.T) {
		author := domain.Caller{ID: primitive.NewObjectID(), Role: domain.RoleMember}
		task := testTask(t, author.ID, "Two Sum")
		task.Files = []domain.FileRef{{Key: "tasks/a.txt"}}

		tasks := new(MockTaskStore)
		files := new(MockFileStore)
		tasks.On("GetByID", ctx, task.ID).Return(task, nil)
		files.On("DeleteFiles", ctx, []string{"tasks/a.txt"}).Return(errors.New("bucket unreachable"))

		svc := newTestTaskService(t, tasks, new(MockUserStore), files)

		_, err := svc.DeleteTask(ctx, task.ID, author)
		require.Error(t, err)
		tasks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("record delete failure after file cleanup is surfaced", func(t *testing.T) {
		author := domain.Caller{ID: primitive.NewObjectID(), Role: domain.RoleMember}
		task := testTask(t, author.ID, "Two Sum")

		tasks := new(MockTaskStore)
		files := new(MockFileStore)
		tasks.On("GetByID", ctx, task.ID).Return(task, nil)
		files.On("DeleteFiles", ctx, []string{}).Return(nil)
		tasks.On("Delete", ctx, task.ID).Return(errors.New("write concern failed"))

		svc := newTestTaskService(t, tasks, new(MockUserStore), files)

		_, err := svc.DeleteTask(ctx, task.ID, author)
		require.Error(t, err)
	})
}

func TestTaskService_ListTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("pages and enriches the full view", func(t *testing.T) {
		author := testUser(t, "alice")
		taskA := testTask(t, author.ID, "Two Sum")
		taskB := testTask(t, author.ID, "Three Sum")

		tasks := new(MockTaskStore)
		tasks.On("List", ctx, store.TaskFilter{}, int64(0), int64(25), store.ViewFull).
			Return([]*domain.Task{taskA, taskB}, nil)
		tasks.On("Count", ctx, store.TaskFilter{}).Return(int64(27), nil)

		users := new(MockUserStore)
		users.On("GetByID", ctx, author.ID).Return(author, nil)

		svc := newTestTaskService(t, tasks, users, new(MockFileStore))

		page, err := svc.ListTasks(ctx, 1, 25)
		require.NoError(t, err)

		assert.Equal(t, 1, page.CurrentPage)
		assert.Equal(t, 2, page.Pages)
		require.Len(t, page.Data, 2)
		assert.Equal(t, "alice", page.Data[0].Author.Username)
	})

	t.Run("empty page keeps data non-nil", func(t *testing.T) {
		tasks := new(MockTaskStore)
		tasks.On("List", ctx, store.TaskFilter{}, int64(25), int64(25), store.ViewFull).
			Return([]*domain.Task{}, nil)
		tasks.On("Count", ctx, store.TaskFilter{}).Return(int64(3), nil)

		svc := newTestTaskService(t, tasks, new(MockUserStore), new(MockFileStore))

		page, err := svc.ListTasks(ctx, 2, 25)
		require.NoError(t, err)
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
	})
}

func TestTaskService_ListFeedTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("filters to published tasks in feed shape", func(t *testing.T) {
		author := testUser(t, "alice")
		task := testTask(t, author.ID, "Two Sum")

		published := false
		filter := store.TaskFilter{Draft: &published}

		tasks := new(MockTaskStore)
		tasks.On("List", ctx, filter, int64(0), int64(25), store.ViewFeed).
			Return([]*domain.Task{task}, nil)
		tasks.On("Count", ctx, filter).Return(int64(1), nil)

		users := new(MockUserStore)
		users.On("GetByID", ctx, author.ID).Return(author, nil)

		svc := newTestTaskService(t, tasks, users, new(MockFileStore))

		page, err := svc.ListFeedTasks(ctx, 1, 25)
		require.NoError(t, err)

		assert.Equal(t, 1, page.Pages)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "alice", page.Data[0].Author.Username)
		tasks.AssertExpectations(t)
	})
}
