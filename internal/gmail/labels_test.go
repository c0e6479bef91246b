package gmail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

// newTestClient returns a client talking to a fake Gmail API that answers
// every request with respond and records what it received.
func newTestClient(t *testing.T, status int, respond string) (*Client, *[]recordedRequest) {
	t.Helper()
	var got []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			assert.NoError(t, json.Unmarshal(data, &rec.Body))
		}
		got = append(got, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respond)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "test",
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c, &got
}

func TestListLabels(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, `{"labels":[
		{"id":"Label_2","name":"Receipts","type":"user"},
		{"id":"INBOX","name":"INBOX","type":"system"}]}`)

	labels, err := c.ListLabels(context.Background())
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "INBOX", labels[0].ID)
	assert.Equal(t, LabelInfo{ID: "Label_2", Name: "Receipts", Type: "user"}, labels[1])

	require.Len(t, *got, 1)
	assert.Equal(t, http.MethodGet, (*got)[0].Method)
	assert.Equal(t, "/gmail/v1/users/me/labels", (*got)[0].Path)
}

func TestCreateLabel(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, `{"id":"Label_9","name":"Travel","messageListVisibility":"show","labelListVisibility":"labelShow"}`)

	info, err := c.CreateLabel(context.Background(), "Travel", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Label_9", info.ID)

	req := (*got)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, map[string]any{
		"name":                  "Travel",
		"messageListVisibility": "show",
		"labelListVisibility":   "labelShow",
	}, req.Body)
}

func TestCreateLabel_Validation(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, `{}`)
	ctx := context.Background()

	_, err := c.CreateLabel(ctx, "", "", "")
	assert.ErrorContains(t, err, "label name is required")

	_, err = c.CreateLabel(ctx, "x", "visible", "")
	assert.ErrorContains(t, err, "invalid message list visibility")

	_, err = c.CreateLabel(ctx, "x", "", "always")
	assert.ErrorContains(t, err, "invalid label list visibility")

	assert.Empty(t, *got)
}

func TestUpdateLabel_Partial(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, `{"id":"Label_9","name":"Trips","labelListVisibility":"labelShow"}`)

	name := "Trips"
	info, err := c.UpdateLabel(context.Background(), "Label_9", LabelUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Trips", info.Name)

	req := (*got)[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/gmail/v1/users/me/labels/Label_9", req.Path)
	assert.Equal(t, map[string]any{"name": "Trips"}, req.Body)
}

func TestUpdateLabel_Validation(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, `{}`)
	ctx := context.Background()

	_, err := c.UpdateLabel(ctx, "Label_1", LabelUpdate{})
	assert.ErrorContains(t, err, "nothing to update")

	empty := ""
	_, err = c.UpdateLabel(ctx, "Label_1", LabelUpdate{Name: &empty})
	assert.ErrorContains(t, err, "cannot be empty")

	bad := "sometimes"
	_, err = c.UpdateLabel(ctx, "Label_1", LabelUpdate{LabelListVisibility: &bad})
	assert.ErrorContains(t, err, "invalid label list visibility")

	_, err = c.UpdateLabel(ctx, "", LabelUpdate{Name: &bad})
	assert.ErrorContains(t, err, "label ID is required")

	assert.Empty(t, *got)
}

func TestDeleteLabel(t *testing.T) {
	c, got := newTestClient(t, http.StatusNoContent, ``)

	require.NoError(t, c.DeleteLabel(context.Background(), "Label_9"))
	assert.Equal(t, http.MethodDelete, (*got)[0].Method)
	assert.Equal(t, "/gmail/v1/users/me/labels/Label_9", (*got)[0].Path)
}

func TestDeleteLabel_APIError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusNotFound, `{"error":{"code":404,"message":"Not Found"}}`)

	err := c.DeleteLabel(context.Background(), "Label_404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete label")
}

func TestModifyMessageLabels(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, `{"id":"m1","labelIds":["STARRED","Label_9"]}`)

	ids, err := c.ModifyMessageLabels(context.Background(), "m1", []string{"Label_9"}, []string{"INBOX"})
	require.NoError(t, err)
	assert.Equal(t, []string{"STARRED", "Label_9"}, ids)

	req := (*got)[0]
	assert.Equal(t, "/gmail/v1/users/me/messages/m1/modify", req.Path)
	assert.Equal(t, []any{"Label_9"}, req.Body["addLabelIds"])
	assert.Equal(t, []any{"INBOX"}, req.Body["removeLabelIds"])
}

func TestModifyMessageLabels_Limits(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, `{}`)
	ctx := context.Background()

	_, err := c.ModifyMessageLabels(ctx, "m1", nil, nil)
	assert.ErrorContains(t, err, "at least one label")

	tooMany := strings.Split(strings.Repeat("L,", MaxLabelsPerModify+1), ",")[:MaxLabelsPerModify+1]
	_, err = c.ModifyMessageLabels(ctx, "m1", tooMany, nil)
	assert.ErrorContains(t, err, "at most 100 labels")

	_, err = c.ModifyMessageLabels(ctx, "", []string{"L"}, nil)
	assert.ErrorContains(t, err, "message ID is required")

	assert.Empty(t, *got)
}
