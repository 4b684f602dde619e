package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFakeOrganizationGeneratorFillsEveryField(t *testing.T) {
	orgs := NewFakeOrganizationGenerator(7).Generate(20)
	require.Len(t, orgs, 20)

	for _, org := range orgs {
		require.Zero(t, org.ID, "ids are assigned by storage")
		for i, value := range org.TextFields() {
			require.NotEmpty(t, value, "field %d of %+v", i, org)
		}
		require.Contains(t, org.Email, "@")
		require.Contains(t, org.ContactPersonEmail, "@")
	}
}

func TestFakeOrganizationGeneratorFixedSeedIsReproducible(t *testing.T) {
	first := NewFakeOrganizationGenerator(99).Generate(5)
	second := NewFakeOrganizationGenerator(99).Generate(5)
	require.Equal(t, first, second)
}

func TestFakeOrganizationGeneratorHandlesNonPositiveCounts(t *testing.T) {
	generator := NewFakeOrganizationGenerator(0)
	require.Empty(t, generator.Generate(0))
	require.Empty(t, generator.Generate(-3))
	require.NotNil(t, generator.Generate(0))
}
