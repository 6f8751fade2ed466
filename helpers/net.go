package helpers

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/mvierow/clubbot/version"
	"github.com/pkg/errors"
	"github.com/sethgrid/pester"
)

var DEFAULT_UA = "clubbot/" + version.BOT_VERSION + " (https://github.com/mvierow/clubbot)"

// NetGetUAWithError performs a GET request with a custom user-agent.
// Retries with backoff on transient failures.
func NetGetUAWithError(url string, useragent string) ([]byte, error) {
	client := pester.New()
	client.Timeout = 15 * time.Second
	client.MaxRetries = 3
	client.Backoff = pester.ExponentialBackoff

	request, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}

	request.Header.Set("User-Agent", useragent)

	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != 200 {
		return nil, errors.New("expected status 200; got " + strconv.Itoa(response.StatusCode))
	}

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, response.Body); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
