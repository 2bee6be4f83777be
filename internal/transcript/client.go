// Package transcript fetches the full spoken narration of a video through
// the Innertube player endpoint: list the caption tracks, pick one by the
// configured language preference, download it as json3 and join the segment
// texts into a single blob. Timestamps are discarded; downstream analysis
// only needs the text.
package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"route-insights-go/internal/logger"
)

const (
	defaultBaseURL = "https://www.youtube.com"
	playerPath     = "/youtubei/v1/player"

	// The ANDROID client context returns caption tracks without the
	// attestation tokens the web client requires.
	clientName    = "ANDROID"
	clientVersion = "19.09.37"
	sdkVersion    = 34
)

// Acquisition failures fall into exactly two classes, both terminal for the
// row within a run.
var (
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	ErrAcquisitionFailed   = errors.New("transcript acquisition failed")
)

type Client struct {
	http        *http.Client
	baseURL     string
	languages   []string
	retryWindow time.Duration
	log         *logrus.Entry
}

// NewClient returns a transcript client with the given language preference
// order. The provider decides which single language is actually served; the
// preference list only ranks the tracks it offers.
func NewClient(languages []string) *Client {
	return &Client{
		http:        &http.Client{Timeout: 15 * time.Second},
		baseURL:     defaultBaseURL,
		languages:   languages,
		retryWindow: 15 * time.Second,
		log:         logger.New().WithField("component", "transcript"),
	}
}

type playerRequest struct {
	Context struct {
		Client struct {
			ClientName        string `json:"clientName"`
			ClientVersion     string `json:"clientVersion"`
			AndroidSDKVersion int    `json:"androidSdkVersion"`
			HL                string `json:"hl"`
		} `json:"client"`
	} `json:"context"`
	VideoID string `json:"videoId"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions struct {
		TracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type trackResponse struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// Fetch returns the concatenated narration text for a video id. Errors wrap
// either ErrTranscriptsDisabled or ErrAcquisitionFailed.
func (c *Client) Fetch(ctx context.Context, videoID string) (string, error) {
	log := c.log.WithField("video_id", videoID)

	pr, err := c.player(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("%w: player request: %v", ErrAcquisitionFailed, err)
	}
	if status := pr.PlayabilityStatus.Status; status != "" && status != "OK" {
		return "", fmt.Errorf("%w: video not playable (%s: %s)",
			ErrAcquisitionFailed, status, pr.PlayabilityStatus.Reason)
	}

	tracks := pr.Captions.TracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return "", ErrTranscriptsDisabled
	}
	track := pickTrack(tracks, c.languages)
	log.WithFields(logrus.Fields{
		"language": track.LanguageCode,
		"kind":     track.Kind,
		"tracks":   len(tracks),
	}).Info("caption track selected")

	text, err := c.download(ctx, track.BaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: track download: %v", ErrAcquisitionFailed, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: track is empty", ErrAcquisitionFailed)
	}
	return text, nil
}

func (c *Client) player(ctx context.Context, videoID string) (*playerResponse, error) {
	var payload playerRequest
	payload.Context.Client.ClientName = clientName
	payload.Context.Client.ClientVersion = clientVersion
	payload.Context.Client.AndroidSDKVersion = sdkVersion
	if len(c.languages) > 0 {
		payload.Context.Client.HL = c.languages[0]
	}
	payload.VideoID = videoID
	body, _ := json.Marshal(payload)

	var pr playerResponse
	if err := c.postJSON(ctx, c.baseURL+playerPath, body, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// pickTrack honors the preference order: the first preferred language with a
// track wins. When nothing matches, the first track the provider lists is
// used, mirroring the provider's own fallback behavior.
func pickTrack(tracks []captionTrack, languages []string) captionTrack {
	for _, lang := range languages {
		for _, tr := range tracks {
			if tr.LanguageCode == lang || strings.HasPrefix(tr.LanguageCode, lang+"-") {
				return tr
			}
		}
	}
	return tracks[0]
}

func (c *Client) download(ctx context.Context, trackURL string) (string, error) {
	sep := "?"
	if strings.Contains(trackURL, "?") {
		sep = "&"
	}
	var tr trackResponse
	if err := c.getJSON(ctx, trackURL+sep+"fmt=json3", &tr); err != nil {
		return "", err
	}

	// One fragment per event, fragments joined by single spaces. json3
	// interleaves bare newline segments; those carry no narration.
	var parts []string
	for _, ev := range tr.Events {
		var sb strings.Builder
		for _, seg := range ev.Segs {
			sb.WriteString(seg.UTF8)
		}
		if s := strings.TrimSpace(sb.String()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " "), nil
}

func (c *Client) postJSON(ctx context.Context, url string, body []byte, target any) error {
	return c.doJSON(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, target)
}

func (c *Client) getJSON(ctx context.Context, url string, target any) error {
	return c.doJSON(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}, target)
}

// doJSON performs a request with exponential backoff. Transport errors and
// 5xx responses are retried inside the window; 4xx responses and malformed
// bodies are permanent, the row is simply reported as failed.
func (c *Client) doJSON(ctx context.Context, build func() (*http.Request, error), target any) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.retryWindow

	var lastErr error
	operation := func() error {
		req, err := build()
		if err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", fmt.Sprintf("com.google.android.youtube/%s (Linux; U; Android 14) gzip", clientVersion))

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error (%d): %s", resp.StatusCode, firstLine(body))
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("request rejected (%d): %s", resp.StatusCode, firstLine(body))
			return backoff.Permanent(lastErr)
		}
		if err := json.Unmarshal(body, target); err != nil {
			lastErr = fmt.Errorf("decode response: %w", err)
			return backoff.Permanent(lastErr)
		}
		lastErr = nil
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			return lastErr
		}
		return err
	}
	return nil
}

func firstLine(body []byte) string {
	s := strings.TrimSpace(string(body))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
