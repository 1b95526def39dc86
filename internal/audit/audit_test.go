package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "farmgate/pkg/domain-errors"
)

type AuditSuite struct {
	suite.Suite
	logger *slog.Logger
}

func (s *AuditSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuditSuite(t *testing.T) {
	suite.Run(t, new(AuditSuite))
}

func (s *AuditSuite) sampleRecord(action string) Record {
	return Record{
		Timestamp:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ActorUsername: "jdoe",
		ActorEmail:    "jdoe@example.com",
		Action:        action,
		TenantID:      "acme",
		Details:       json.RawMessage(`{"path":"/wp-content"}`),
		SourceIP:      "203.0.113.7",
		UserAgent:     "Firefox 128 (Linux)",
	}
}

func (s *AuditSuite) TestLoggerAppendsToStore() {
	store := NewInMemoryStore()
	l := NewLogger(store, s.logger)

	s.Require().NoError(l.Log(context.Background(), s.sampleRecord("file_upload")))
	s.Require().NoError(l.Log(context.Background(), s.sampleRecord("db_query")))

	records := store.Records()
	s.Require().Len(records, 2)
	s.Equal("file_upload", records[0].Action)
	s.Equal("db_query", records[1].Action)
}

func (s *AuditSuite) TestLoggerWrapsSinkFailure() {
	store := NewInMemoryStore()
	store.FailWith(errors.New("disk full"))
	l := NewLogger(store, s.logger)

	err := l.Log(context.Background(), s.sampleRecord("file_upload"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAuditWriteFailed))
	s.ErrorContains(err, "disk full")
}

func (s *AuditSuite) TestFileStoreAppendsJSONLines() {
	path := filepath.Join(s.T().TempDir(), "actions.log")
	store, err := NewFileStore(path)
	s.Require().NoError(err)
	defer store.Close()

	s.Require().NoError(store.Append(context.Background(), s.sampleRecord("file_upload")))
	s.Require().NoError(store.Append(context.Background(), s.sampleRecord("db_query")))

	f, err := os.Open(path)
	s.Require().NoError(err)
	defer f.Close()

	var actions []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		s.Require().NoError(json.Unmarshal(scanner.Bytes(), &rec))
		actions = append(actions, rec.Action)
		s.Equal("jdoe", rec.ActorUsername)
		s.Equal("203.0.113.7", rec.SourceIP)
	}
	s.Require().NoError(scanner.Err())
	s.Equal([]string{"file_upload", "db_query"}, actions)
}

func (s *AuditSuite) TestFileStoreSurvivesReopen() {
	path := filepath.Join(s.T().TempDir(), "actions.log")

	first, err := NewFileStore(path)
	s.Require().NoError(err)
	s.Require().NoError(first.Append(context.Background(), s.sampleRecord("one")))
	s.Require().NoError(first.Close())

	second, err := NewFileStore(path)
	s.Require().NoError(err)
	defer second.Close()
	s.Require().NoError(second.Append(context.Background(), s.sampleRecord("two")))

	data, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Contains(string(data), `"action":"one"`)
	s.Contains(string(data), `"action":"two"`)
}

func (s *AuditSuite) TestFileStoreCreatesParentDirectory() {
	path := filepath.Join(s.T().TempDir(), "nested", "dir", "actions.log")
	store, err := NewFileStore(path)
	s.Require().NoError(err)
	defer store.Close()

	s.Require().NoError(store.Append(context.Background(), s.sampleRecord("file_upload")))
}

func (s *AuditSuite) TestFileStoreConcurrentAppendsKeepLinesIntact() {
	path := filepath.Join(s.T().TempDir(), "actions.log")
	store, err := NewFileStore(path)
	s.Require().NoError(err)
	defer store.Close()

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				rec := s.sampleRecord(fmt.Sprintf("action-%d-%d", w, i))
				_ = store.Append(context.Background(), rec)
			}
		}(w)
	}
	wg.Wait()

	f, err := os.Open(path)
	s.Require().NoError(err)
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		s.Require().NoError(json.Unmarshal(scanner.Bytes(), &rec), "every line must be a complete record")
		count++
	}
	s.Require().NoError(scanner.Err())
	s.Equal(writers*perWriter, count)
}

func (s *AuditSuite) TestMirroredStoreCopiesAfterPrimarySuccess() {
	primary := NewInMemoryStore()
	secondary := NewInMemoryStore()
	mirror := NewMirror(secondary, 16, s.logger)

	store := NewMirroredStore(primary, mirror)
	s.Require().NoError(store.Append(context.Background(), s.sampleRecord("file_upload")))
	s.Require().NoError(store.Append(context.Background(), s.sampleRecord("db_query")))
	mirror.Close()

	s.Len(primary.Records(), 2)
	s.Len(secondary.Records(), 2, "mirror receives every record after drain")
	s.Equal("file_upload", secondary.Records()[0].Action)
}

func (s *AuditSuite) TestMirroredStorePrimaryFailureSkipsMirror() {
	primary := NewInMemoryStore()
	primary.FailWith(errors.New("disk full"))
	secondary := NewInMemoryStore()
	mirror := NewMirror(secondary, 16, s.logger)

	store := NewMirroredStore(primary, mirror)
	s.Require().Error(store.Append(context.Background(), s.sampleRecord("file_upload")))
	mirror.Close()

	s.Empty(secondary.Records(), "nothing is mirrored when the primary append fails")
}

func (s *AuditSuite) TestMirrorSecondaryFailureDoesNotSurface() {
	primary := NewInMemoryStore()
	secondary := NewInMemoryStore()
	secondary.FailWith(errors.New("broker down"))
	mirror := NewMirror(secondary, 16, s.logger)

	store := NewMirroredStore(primary, mirror)
	s.Require().NoError(store.Append(context.Background(), s.sampleRecord("file_upload")))
	mirror.Close()

	s.Len(primary.Records(), 1, "primary append stays durable when the mirror fails")
}

func (s *AuditSuite) TestRecordOmitsEmptyOptionalFields() {
	rec := Record{
		Timestamp:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ActorUsername: "jdoe",
		Action:        "login",
		SourceIP:      "203.0.113.7",
	}
	data, err := json.Marshal(rec)
	s.Require().NoError(err)
	s.NotContains(string(data), "site_id")
	s.NotContains(string(data), "user_agent")
	s.NotContains(string(data), "details")
}
