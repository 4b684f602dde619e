package services

import (
	"github.com/brianvoe/gofakeit/v7"

	"github.com/charlesng35/orgdirectory/internal/models"
)

// OrganizationGenerator produces synthetic organizations for seeding.
type OrganizationGenerator interface {
	Generate(n int) []models.Organization
}

// FakeOrganizationGenerator builds organizations from gofakeit data.
// A zero seed draws a fresh random seed on every call.
type FakeOrganizationGenerator struct {
	seed uint64
}

// NewFakeOrganizationGenerator returns a generator using seed.
func NewFakeOrganizationGenerator(seed uint64) *FakeOrganizationGenerator {
	return &FakeOrganizationGenerator{seed: seed}
}

// Generate returns n organizations without ids. n <= 0 yields an empty slice.
func (g *FakeOrganizationGenerator) Generate(n int) []models.Organization {
	if n <= 0 {
		return []models.Organization{}
	}

	faker := gofakeit.New(g.seed)
	orgs := make([]models.Organization, n)
	for i := range orgs {
		orgs[i] = models.Organization{
			Name:               faker.Company(),
			Address:            faker.Street(),
			PhoneNumber:        faker.PhoneFormatted(),
			Email:              faker.Email(),
			Website:            faker.DomainName(),
			ContactPerson:      faker.Name(),
			ContactPersonPhone: faker.PhoneFormatted(),
			ContactPersonEmail: faker.Email(),
		}
	}
	return orgs
}
