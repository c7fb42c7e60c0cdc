package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPairKeySymmetric(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	assert.Equal(t, PairKey(a, b), PairKey(b, a))
	assert.NotEqual(t, PairKey(a, b), PairKey(a, primitive.NewObjectID()))
}

func TestPairKeyOrdersHexes(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	lo, hi := a.Hex(), b.Hex()
	if lo > hi {
		lo, hi = hi, lo
	}
	assert.Equal(t, lo+":"+hi, PairKey(a, b))
}
