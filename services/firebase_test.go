package services_test

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"vitalsim/services"

	"github.com/stretchr/testify/require"
)

func TestTimestampKeyFormat(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	require.Equal(t, "2026-03-14_09-26-53-589", services.TimestampKey(at))
}

func TestTimestampKeyHasNoForbiddenCharacters(t *testing.T) {
	// Firebase path segments reject '.', '#', '$', '[' and ']'
	key := services.TimestampKey(time.Now())
	require.False(t, strings.ContainsAny(key, ".#$[]/"), "key %q contains forbidden characters", key)

	pattern := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}-\d{3}$`)
	require.True(t, pattern.MatchString(key), "key %q has unexpected shape", key)
}

func TestTimestampKeyMillisecondPrecision(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	// Writers landing in the same second but different milliseconds get
	// distinct keys.
	a := services.TimestampKey(base.Add(1 * time.Millisecond))
	b := services.TimestampKey(base.Add(2 * time.Millisecond))
	require.NotEqual(t, a, b)

	// Keys sort chronologically as strings
	require.Less(t, a, b)
	require.Less(t, services.TimestampKey(base), services.TimestampKey(base.Add(time.Hour)))
}
