package scenario

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	svc := NewService()

	list := svc.List()
	require.Len(t, list, 4)
	assert.Equal(t, FreeKey, list[0].Key)

	free, err := svc.Get(FreeKey)
	require.NoError(t, err)
	assert.False(t, free.HasGreeting())
	assert.Empty(t, free.Prompt)

	school, err := svc.Get("school")
	require.NoError(t, err)
	assert.Equal(t, "Good morning! What's your name?", school.Greeting)
	assert.Equal(t, "You are a friendly teacher.", school.Prompt)
}

func TestGetUnknown(t *testing.T) {
	_, err := NewService().Get("mars")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	_, err := NewCatalog([]Scenario{{Key: "a"}, {Key: "a"}})
	assert.Error(t, err)

	_, err = NewCatalog([]Scenario{{Title: "no key"}})
	assert.Error(t, err)
}

func TestListIsACopy(t *testing.T) {
	svc := NewService()
	list := svc.List()
	list[1].Greeting = "changed"

	school, err := svc.Get("school")
	require.NoError(t, err)
	assert.Equal(t, "Good morning! What's your name?", school.Greeting)
}

func TestListHandlerHidesPrompts(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(NewService()).List(rec, httptest.NewRequest(http.MethodGet, "/api/scenarios", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "You are a shopkeeper")

	var out []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 4)
	assert.Equal(t, "store", out[2]["key"])
	assert.Equal(t, "Welcome! What do you want to buy today?", out[2]["greeting"])
}
