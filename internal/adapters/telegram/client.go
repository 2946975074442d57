// Package telegram is a thin Bot API client over plain HTTP. Only the
// methods the bot actually uses are implemented.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func New(token string) *Client {
	// No client timeout here: getUpdates long-polls; per-call deadlines come
	// from the context.
	return &Client{token: token, baseURL: defaultBaseURL, httpClient: &http.Client{}}
}

// NewWithBaseURL points the client at a different API host (tests).
func NewWithBaseURL(token, baseURL string) *Client {
	return &Client{token: token, baseURL: strings.TrimRight(baseURL, "/"), httpClient: &http.Client{}}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

func (c *Client) methodURL(method string) string {
	return c.baseURL + "/bot" + c.token + "/" + method
}

func (c *Client) call(ctx context.Context, method string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, method, out)
}

func (c *Client) callMultipart(ctx context.Context, method string, fields map[string]string, fileField, filePath string, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return err
		}
	}
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()
	part, err := w.CreateFormFile(fileField, filepath.Base(filePath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, method, out)
}

func (c *Client) do(req *http.Request, method string, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return fmt.Errorf("telegram %s status %d: %s", method, resp.StatusCode, string(body))
	}
	if !api.OK {
		return fmt.Errorf("telegram %s: %s", method, api.Description)
	}
	if out != nil && len(api.Result) > 0 {
		return json.Unmarshal(api.Result, out)
	}
	return nil
}

func markupJSON(kb *InlineKeyboardMarkup) string {
	if kb == nil {
		return ""
	}
	b, err := json.Marshal(kb)
	if err != nil {
		return ""
	}
	return string(b)
}

// GetUpdates long-polls for up to timeout seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	form := url.Values{}
	form.Set("offset", strconv.FormatInt(offset, 10))
	form.Set("timeout", strconv.Itoa(timeout))
	form.Set("allowed_updates", `["message","callback_query"]`)

	// Give the HTTP round trip headroom over the poll window.
	cctx, cancel := context.WithTimeout(ctx, time.Duration(timeout+10)*time.Second)
	defer cancel()

	var updates []Update
	if err := c.call(cctx, "getUpdates", form, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, kb *InlineKeyboardMarkup) (*Message, error) {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "1")
	if m := markupJSON(kb); m != "" {
		form.Set("reply_markup", m)
	}
	var msg Message
	if err := c.call(ctx, "sendMessage", form, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendPhoto accepts an http(s) URL, a file_id, or a local path; local files
// are uploaded as multipart.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photo, caption string, kb *InlineKeyboardMarkup) (*Message, error) {
	var msg Message
	if isLocal(photo) {
		fields := map[string]string{
			"chat_id":    strconv.FormatInt(chatID, 10),
			"caption":    caption,
			"parse_mode": "HTML",
		}
		if m := markupJSON(kb); m != "" {
			fields["reply_markup"] = m
		}
		if err := c.callMultipart(ctx, "sendPhoto", fields, "photo", photo, &msg); err != nil {
			return nil, err
		}
		return &msg, nil
	}
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("photo", photo)
	form.Set("caption", caption)
	form.Set("parse_mode", "HTML")
	if m := markupJSON(kb); m != "" {
		form.Set("reply_markup", m)
	}
	if err := c.call(ctx, "sendPhoto", form, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, kb *InlineKeyboardMarkup) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("message_id", strconv.FormatInt(messageID, 10))
	form.Set("text", text)
	form.Set("parse_mode", "HTML")
	if m := markupJSON(kb); m != "" {
		form.Set("reply_markup", m)
	}
	return c.call(ctx, "editMessageText", form, nil)
}

func (c *Client) EditMessageCaption(ctx context.Context, chatID, messageID int64, caption string, kb *InlineKeyboardMarkup) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("message_id", strconv.FormatInt(messageID, 10))
	form.Set("caption", caption)
	form.Set("parse_mode", "HTML")
	if m := markupJSON(kb); m != "" {
		form.Set("reply_markup", m)
	}
	return c.call(ctx, "editMessageCaption", form, nil)
}

// EditMessageMedia swaps the photo and caption of an existing message.
func (c *Client) EditMessageMedia(ctx context.Context, chatID, messageID int64, photo, caption string, kb *InlineKeyboardMarkup) error {
	media := map[string]string{"type": "photo", "caption": caption, "parse_mode": "HTML"}
	if isLocal(photo) {
		media["media"] = "attach://photo"
		mediaJSON, err := json.Marshal(media)
		if err != nil {
			return err
		}
		fields := map[string]string{
			"chat_id":    strconv.FormatInt(chatID, 10),
			"message_id": strconv.FormatInt(messageID, 10),
			"media":      string(mediaJSON),
		}
		if m := markupJSON(kb); m != "" {
			fields["reply_markup"] = m
		}
		return c.callMultipart(ctx, "editMessageMedia", fields, "photo", photo, nil)
	}
	media["media"] = photo
	mediaJSON, err := json.Marshal(media)
	if err != nil {
		return err
	}
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("message_id", strconv.FormatInt(messageID, 10))
	form.Set("media", string(mediaJSON))
	if m := markupJSON(kb); m != "" {
		form.Set("reply_markup", m)
	}
	return c.call(ctx, "editMessageMedia", form, nil)
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	form := url.Values{}
	form.Set("callback_query_id", callbackID)
	if text != "" {
		form.Set("text", text)
	}
	return c.call(ctx, "answerCallbackQuery", form, nil)
}

// SendDocument uploads data under fileName (used for the xlsx order export).
func (c *Client) SendDocument(ctx context.Context, chatID int64, fileName string, data []byte, caption string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("chat_id", strconv.FormatInt(chatID, 10))
	if caption != "" {
		_ = w.WriteField("caption", caption)
	}
	part, err := w.CreateFormFile("document", fileName)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendDocument"), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, "sendDocument", nil)
}

// isLocal treats anything that is not a URL but exists on disk as a file to
// upload; everything else is passed through for Telegram to resolve.
func isLocal(ref string) bool {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return false
	}
	st, err := os.Stat(ref)
	return err == nil && !st.IsDir()
}
