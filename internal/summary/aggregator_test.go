package summary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"

	"farmgate/internal/catalog"
	dErrors "farmgate/pkg/domain-errors"
)

// fakeProber returns fixed sizes per path and fails for configured paths.
type fakeProber struct {
	sizes   map[string]float64
	failFor map[string]bool
}

func (p *fakeProber) DirSizeMB(_ context.Context, path string) (float64, error) {
	if p.failFor[path] {
		return 0, errors.New("du: cannot access")
	}
	return p.sizes[path], nil
}

type AggregatorSuite struct {
	suite.Suite
	store  *InMemoryStore
	prober *fakeProber
	agg    *Aggregator
}

func TestAggregatorSuite(t *testing.T) {
	suite.Run(t, new(AggregatorSuite))
}

func (s *AggregatorSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.prober = &fakeProber{
		sizes:   map[string]float64{},
		failFor: map[string]bool{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.agg = New(s.store, s.prober, "/wordpress-data", logger)
}

func (s *AggregatorSuite) seedTenant(id string, users, posts, pages int, sizeMB float64) catalog.TenantRecord {
	schema := catalog.SchemaName(id)
	s.store.Seed(schema, TenantFixture{
		Options: map[OptionKey]string{
			OptionSiteURL:    "https://site" + id + ".example.com",
			OptionBlogName:   "Site " + id,
			OptionAdminEmail: "admin@site" + id + ".example.com",
		},
		Users:          users,
		PublishedPosts: posts,
		PublishedPages: pages,
		SizeMB:         sizeMB,
	})
	s.prober.sizes["/wordpress-data/wp-site-"+id] = 128
	return catalog.TenantRecord{TenantID: id, SchemaName: schema}
}

func (s *AggregatorSuite) TestSummarize() {
	tenant := s.seedTenant("42", 5, 10, 3, 12.3456)

	got, err := s.agg.Summarize(context.Background(), tenant)
	s.Require().NoError(err)

	s.Equal("Site 42", got.Tenant.DisplayName)
	s.Equal("https://site42.example.com", got.Tenant.CanonicalURL)
	s.Equal("admin@site42.example.com", got.AdminEmail)
	s.Equal(5, got.Stats.Users)
	s.Equal(10, got.Stats.Posts)
	s.Equal(3, got.Stats.Pages)
	s.Equal(12.35, got.Stats.DBSizeMB, "sizes are rounded to two decimals")
	s.Equal(128.0, got.Stats.FileSizeMB)
}

func (s *AggregatorSuite) TestSummarizeIdempotent() {
	tenant := s.seedTenant("42", 5, 10, 3, 12)

	first, err := s.agg.Summarize(context.Background(), tenant)
	s.Require().NoError(err)
	second, err := s.agg.Summarize(context.Background(), tenant)
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *AggregatorSuite) TestMissingOptionsDefault() {
	schema := catalog.SchemaName("7")
	s.store.Seed(schema, TenantFixture{Options: map[OptionKey]string{}})

	got, err := s.agg.Summarize(context.Background(), catalog.TenantRecord{TenantID: "7", SchemaName: schema})
	s.Require().NoError(err)

	s.Equal("7", got.Tenant.DisplayName, "display name defaults to tenant id")
	s.Equal("", got.Tenant.CanonicalURL)
	s.Equal("", got.AdminEmail)
}

func (s *AggregatorSuite) TestStoreOutageIsMetadataUnavailable() {
	tenant := s.seedTenant("42", 1, 1, 1, 1)
	s.store.FailWith(errors.New("connection reset"))

	_, err := s.agg.Summarize(context.Background(), tenant)
	s.True(dErrors.HasCode(err, dErrors.CodeMetadataUnavailable))
}

func (s *AggregatorSuite) TestProbeFailureDegradesToZero() {
	tenant := s.seedTenant("42", 5, 10, 3, 12)
	s.prober.failFor["/wordpress-data/wp-site-42"] = true

	got, err := s.agg.Summarize(context.Background(), tenant)
	s.Require().NoError(err)
	s.Equal(0.0, got.Stats.FileSizeMB)
	s.Equal(12.0, got.Stats.DBSizeMB, "other stats are unaffected by a probe failure")
}

func (s *AggregatorSuite) TestSummarizeAllOrderedAndIsolated() {
	var tenants []catalog.TenantRecord
	for i := 1; i <= 5; i++ {
		tenants = append(tenants, s.seedTenant(fmt.Sprint(i), i, i, i, float64(i)))
	}
	// Probe failure for tenant 3 only.
	s.prober.failFor["/wordpress-data/wp-site-3"] = true

	got := s.agg.SummarizeAll(context.Background(), tenants)
	s.Require().Len(got, 5)

	for i, summary := range got {
		s.Equal(tenants[i].TenantID, summary.Tenant.TenantID, "input order is preserved")
	}
	s.Equal(0.0, got[2].Stats.FileSizeMB)
	s.Equal(128.0, got[0].Stats.FileSizeMB, "healthy tenants keep accurate values")
	s.Equal(128.0, got[4].Stats.FileSizeMB)
}

func (s *AggregatorSuite) TestSummarizeAllSkipsSickTenant() {
	healthy := s.seedTenant("1", 1, 1, 1, 1)
	sick := catalog.TenantRecord{TenantID: "2", SchemaName: catalog.SchemaName("2")} // never seeded
	healthy2 := s.seedTenant("3", 3, 3, 3, 3)

	got := s.agg.SummarizeAll(context.Background(), []catalog.TenantRecord{healthy, sick, healthy2})

	s.Require().Len(got, 2)
	s.Equal("1", got[0].Tenant.TenantID)
	s.Equal("3", got[1].Tenant.TenantID)
}

func (s *AggregatorSuite) TestSummarizeAllMatchesSequential() {
	var tenants []catalog.TenantRecord
	for i := 1; i <= 8; i++ {
		tenants = append(tenants, s.seedTenant(fmt.Sprint(i), i, i*2, i*3, float64(i)))
	}

	concurrent := s.agg.SummarizeAll(context.Background(), tenants)

	sequential := make([]SiteSummary, 0, len(tenants))
	for _, tenant := range tenants {
		summary, err := s.agg.Summarize(context.Background(), tenant)
		s.Require().NoError(err)
		sequential = append(sequential, summary)
	}

	s.Equal(sequential, concurrent, "fan-out must be behaviorally identical to sequential")
}

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		12.3456: 12.35,
		0:       0,
		1.005:   1.0, // float repr of 1.005 sits just below the midpoint
		99.999:  100,
	}
	for in, want := range cases {
		if got := round2(in); got != want {
			t.Errorf("round2(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestDiskUsageProber(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(dir+"/data.bin", make([]byte, 1024), 0o644); err != nil {
		t.Fatal(err)
	}

	prober := NewDiskUsageProber(0)
	size, err := prober.DirSizeMB(context.Background(), dir)
	if err != nil {
		t.Skipf("du unavailable: %v", err)
	}
	if size < 0 {
		t.Errorf("negative size %v", size)
	}
}

func TestDiskUsageProberMissingPath(t *testing.T) {
	prober := NewDiskUsageProber(0)
	_, err := prober.DirSizeMB(context.Background(), "/nonexistent/farmgate-test-path")
	if err == nil {
		t.Skip("du tolerated missing path on this platform")
	}
}
