package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/avatarctic/product-catalog-api/internal/core/domain/product"
)

func TestCollectionCacheKey_AbsentSearchNeverCollides(t *testing.T) {
	absent := collectionCacheKey(product.ListQuery{Page: 1, PerPage: 10})

	for _, term := range []string{"", "nosearch", ":nosearch", "search=", `"`, "page=1:per_page=10:nosearch"} {
		term := term
		q := product.ListQuery{Page: 1, PerPage: 10, Search: &term}
		assert.NotEqual(t, absent, collectionCacheKey(q), "term %q", term)
	}
}

func TestCollectionCacheKey_Deterministic(t *testing.T) {
	s := "phone"
	a := collectionCacheKey(product.ListQuery{Page: 2, PerPage: 20, Search: &s})
	s2 := "phone"
	b := collectionCacheKey(product.ListQuery{Page: 2, PerPage: 20, Search: &s2})
	assert.Equal(t, a, b)
	assert.Equal(t, `products:page=2:per_page=20:search="phone"`, a)
	assert.NotEqual(t, a, collectionCacheKey(product.ListQuery{Page: 3, PerPage: 20, Search: &s}))
}

func TestSingleCacheKey(t *testing.T) {
	id := uuid.MustParse("7f1d2c1e-7c4b-4b7a-9f63-2f6f5b0f4c11")
	assert.Equal(t, "product:7f1d2c1e-7c4b-4b7a-9f63-2f6f5b0f4c11", singleCacheKey(id))
}
