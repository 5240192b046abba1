package workerapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/sjson"
)

const defaultDiscoveryTimeoutSecs = 5

type discoverRequest struct {
	Timeout int `json:"timeout"`
}

type addCameraRequest struct {
	CameraID string `json:"camera_id"`
	RTSPURL  string `json:"rtsp_url"`
	Enabled  bool   `json:"enabled"`
}

type testCameraRequest struct {
	RTSPURL string `json:"rtsp_url"`
}

// withCredentials splices optional credential fields into an encoded
// request body. Absent credentials leave the body untouched, so the worker
// can distinguish "no credentials" from empty ones.
func withCredentials(body []byte, creds *Credentials) ([]byte, error) {
	if creds == nil {
		return body, nil
	}
	body, err := sjson.SetBytes(body, "username", creds.Username)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(body, "password", creds.Password)
}

// CameraFeeds lists all configured camera feeds and their stream state.
func (c *Client) CameraFeeds(ctx context.Context) (json.RawMessage, error) {
	return c.opaque(ctx, http.MethodGet, "/api/cameras", nil, readTimeout)
}

// CameraFrame fetches the most recent captured frame for one camera.
func (c *Client) CameraFrame(ctx context.Context, cameraID string) (json.RawMessage, error) {
	path := fmt.Sprintf("/api/cameras/%s/frame", url.PathEscape(cameraID))
	return c.opaque(ctx, http.MethodGet, path, nil, readTimeout)
}

// DiscoverCameras scans the local network for camera streams. A
// non-positive timeoutSecs falls back to the worker's default of 5 seconds.
func (c *Client) DiscoverCameras(ctx context.Context, timeoutSecs int) (json.RawMessage, error) {
	if timeoutSecs <= 0 {
		timeoutSecs = defaultDiscoveryTimeoutSecs
	}
	body, err := json.Marshal(discoverRequest{Timeout: timeoutSecs})
	if err != nil {
		return nil, newParseError("POST /api/cameras/discover", err)
	}
	return c.opaque(ctx, http.MethodPost, "/api/cameras/discover", body, discoveryTimeout)
}

// AddCamera registers a camera stream with the worker. The camera is
// always registered enabled; creds may be nil for unauthenticated streams.
func (c *Client) AddCamera(ctx context.Context, cameraID, rtspURL string, creds *Credentials) (json.RawMessage, error) {
	body, err := json.Marshal(addCameraRequest{CameraID: cameraID, RTSPURL: rtspURL, Enabled: true})
	if err != nil {
		return nil, newParseError("POST /api/cameras/add", err)
	}
	body, err = withCredentials(body, creds)
	if err != nil {
		return nil, newParseError("POST /api/cameras/add", err)
	}
	return c.opaque(ctx, http.MethodPost, "/api/cameras/add", body, cameraEditTimeout)
}

// TestCamera asks the worker to probe connectivity of a camera stream URL.
// This is the slowest operation class; the worker has to open the stream.
func (c *Client) TestCamera(ctx context.Context, cameraID, rtspURL string, creds *Credentials) (json.RawMessage, error) {
	path := fmt.Sprintf("/api/cameras/%s/test", url.PathEscape(cameraID))
	body, err := json.Marshal(testCameraRequest{RTSPURL: rtspURL})
	if err != nil {
		return nil, newParseError("POST "+path, err)
	}
	body, err = withCredentials(body, creds)
	if err != nil {
		return nil, newParseError("POST "+path, err)
	}
	return c.opaque(ctx, http.MethodPost, path, body, cameraTestTimeout)
}

// RemoveCamera unregisters a camera stream.
func (c *Client) RemoveCamera(ctx context.Context, cameraID string) (json.RawMessage, error) {
	path := fmt.Sprintf("/api/cameras/%s/remove", url.PathEscape(cameraID))
	return c.opaque(ctx, http.MethodDelete, path, nil, cameraEditTimeout)
}
