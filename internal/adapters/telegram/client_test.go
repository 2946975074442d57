package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithBaseURL("test-token", srv.URL)
}

func TestSendMessage(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotForm map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":77,"chat":{"id":123456789}}}`))
	})

	kb := Keyboard(Row(Btn("Корзина", "cart")))
	msg, err := c.SendMessage(context.Background(), 123456789, "привет", kb)
	require.NoError(t, err)
	require.Equal(t, int64(77), msg.MessageID)

	require.Equal(t, "/bottest-token/sendMessage", gotPath)
	require.Equal(t, "123456789", gotForm["chat_id"][0])
	require.Equal(t, "привет", gotForm["text"][0])
	require.Equal(t, "HTML", gotForm["parse_mode"][0])

	var markup InlineKeyboardMarkup
	require.NoError(t, json.Unmarshal([]byte(gotForm["reply_markup"][0]), &markup))
	require.Equal(t, "cart", markup.InlineKeyboard[0][0].CallbackData)
}

func TestSendMessageAPIError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	})
	_, err := c.SendMessage(context.Background(), 1, "x", nil)
	require.ErrorContains(t, err, "chat not found")
}

func TestGetUpdates(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "42", r.PostForm.Get("offset"))
		require.Equal(t, `["message","callback_query"]`, r.PostForm.Get("allowed_updates"))
		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":42,"message":{"message_id":1,"chat":{"id":555555},"text":"/start"}},
			{"update_id":43,"callback_query":{"id":"cb1","from":{"id":555555,"first_name":"Анна"},"data":"cart","message":{"message_id":2,"chat":{"id":555555}}}},
			{"update_id":44,"callback_query":{"id":"cb2","data":"cart","message":{"message_id":3,"chat":{"id":555555}}}}
		]}`))
	})

	updates, err := c.GetUpdates(context.Background(), 42, 0)
	require.NoError(t, err)
	require.Len(t, updates, 3)
	require.Equal(t, "/start", updates[0].Message.Text)
	require.Equal(t, "cart", updates[1].CallbackQuery.Data)
	require.Equal(t, "Анна", updates[1].CallbackQuery.From.FirstName)
	// The sender can be absent (channel posts); the field must stay optional.
	require.Nil(t, updates[2].CallbackQuery.From)
}

func TestSendPhotoRemoteURL(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "https://example.com/p.jpg", r.PostForm.Get("photo"))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":5,"chat":{"id":1}}}`))
	})
	_, err := c.SendPhoto(context.Background(), 123456789, "https://example.com/p.jpg", "подпись", nil)
	require.NoError(t, err)
}

func TestSendPhotoLocalUpload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "p.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpegdata"), 0o644))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, _, err := r.FormFile("photo")
		require.NoError(t, err)
		defer f.Close()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":6,"chat":{"id":1}}}`))
	})
	_, err := c.SendPhoto(context.Background(), 123456789, path, "подпись", nil)
	require.NoError(t, err)
}

func TestSendDocument(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("document")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "orders.xlsx", hdr.Filename)
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	})
	err := c.SendDocument(context.Background(), 123456789, "orders.xlsx", []byte{1, 2, 3}, "выгрузка")
	require.NoError(t, err)
}

func TestIsLocal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.True(t, isLocal(path))
	require.False(t, isLocal("https://example.com/a.jpg"))
	require.False(t, isLocal("AgACAgIAAxkBAAE")) // file_id, nothing on disk
	require.False(t, isLocal(t.TempDir()))       // directories are never uploaded
}
