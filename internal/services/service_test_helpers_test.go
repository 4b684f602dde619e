package services

import (
	"context"
	"sync"
	"time"

	"github.com/charlesng35/orgdirectory/internal/database"
	"github.com/charlesng35/orgdirectory/internal/models"
)

type pageCall struct {
	filter database.OrganizationFilter
	offset int
	limit  int
}

type recordingStore struct {
	mu sync.Mutex

	pageCalls   []pageCall
	insertCalls int
	batchSizes  []int
	inserted    []models.Organization

	records []models.Organization
	total   int64
	err     error
	delay   time.Duration
}

func (s *recordingStore) Page(_ context.Context, filter database.OrganizationFilter, offset, limit int) ([]models.Organization, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pageCalls = append(s.pageCalls, pageCall{filter: filter, offset: offset, limit: limit})
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.records, s.total, nil
}

func (s *recordingStore) InsertBatch(_ context.Context, orgs []models.Organization, batchSize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	time.Sleep(s.delay)
	s.insertCalls++
	s.batchSizes = append(s.batchSizes, batchSize)
	if s.err != nil {
		return s.err
	}
	s.inserted = append(s.inserted, orgs...)
	return nil
}

func (s *recordingStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pageCalls) + s.insertCalls
}

type staticGenerator struct {
	calls int
}

func (g *staticGenerator) Generate(n int) []models.Organization {
	g.calls++
	orgs := make([]models.Organization, n)
	for i := range orgs {
		orgs[i] = models.Organization{Name: "Generated"}
	}
	return orgs
}
