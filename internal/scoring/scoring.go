// Package scoring holds the score formula and the interests lookup. Both
// read through the resilient store: scores as an ephemeral cache, interest
// categories as durable records.
package scoring

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"scoring-api/internal/store"
)

const (
	scoreKeyPrefix    = "uid:"
	interestKeyPrefix = "i:"
	scoreCacheTTL     = time.Hour
)

// Categories is the vocabulary the seeder draws from.
var Categories = []string{
	"cars", "pets", "travel", "hi-tech", "sport", "music",
	"books", "tv", "cinema", "geek", "otus",
}

// Person carries the cleaned score inputs. Empty strings mean the field
// was not supplied; Gender nil means absent (0 is a declared value).
type Person struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Birthday  string
	Gender    *int
}

// Score computes the person's score, reading and populating the cache.
// A degraded cache read just recomputes; a degraded cache write is lost
// without affecting the result.
func Score(ctx context.Context, st *store.Store, p Person) float64 {
	key := scoreCacheKey(p)
	if cached, ok := st.CacheGet(ctx, key); ok {
		if score, err := strconv.ParseFloat(cached, 64); err == nil {
			return score
		}
	}

	score := 0.0
	if p.Phone != "" {
		score += 1.5
	}
	if p.Email != "" {
		score += 1.5
	}
	if p.Birthday != "" && p.Gender != nil {
		score += 1.5
	}
	if p.FirstName != "" && p.LastName != "" {
		score += 0.5
	}

	st.CacheSet(ctx, key, strconv.FormatFloat(score, 'f', -1, 64), scoreCacheTTL)
	return score
}

func scoreCacheKey(p Person) string {
	birthday := p.Birthday
	if d, err := time.Parse("02.01.2006", p.Birthday); err == nil {
		birthday = d.Format("20060102")
	}
	parts := strings.Join([]string{p.FirstName, p.LastName, p.Phone, birthday}, "")
	sum := md5.Sum([]byte(parts))
	return scoreKeyPrefix + hex.EncodeToString(sum[:])
}

// Interests returns the stored interest categories for a client. A missing
// or degraded record reads as no interests; a record that does not decode
// is an error, not a miss.
func Interests(ctx context.Context, st *store.Store, clientID int64) ([]string, error) {
	raw, ok := st.Get(ctx, interestKey(clientID))
	if !ok {
		return []string{}, nil
	}
	var interests []string
	if err := json.Unmarshal([]byte(raw), &interests); err != nil {
		return nil, fmt.Errorf("decode interests for client %d: %w", clientID, err)
	}
	return interests, nil
}

// SeedInterests writes two random categories for every client id in
// [first, last). Seeding is write-dependent, so a degraded set is fatal.
func SeedInterests(ctx context.Context, st *store.Store, first, last int64) error {
	for id := first; id < last; id++ {
		picks := pickCategories(2)
		data, err := json.Marshal(picks)
		if err != nil {
			return err
		}
		if !st.Set(ctx, interestKey(id), string(data), 0) {
			return fmt.Errorf("seed interests for client %d: store write failed", id)
		}
	}
	return nil
}

func interestKey(clientID int64) string {
	return interestKeyPrefix + strconv.FormatInt(clientID, 10)
}

func pickCategories(n int) []string {
	shuffled := make([]string, len(Categories))
	copy(shuffled, Categories)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
