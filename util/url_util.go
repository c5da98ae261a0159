package util

import (
	"errors"
	u "net/url"
	"strings"
)

func GetDomain(url string) (string, error) {
	parsedUrl, err := u.Parse(url)
	if err != nil {
		return "", err
	}
	if parsedUrl.Hostname() == "" {
		return "", errors.New("invalid url. Url should contain scheme and hostname")
	}

	return parsedUrl.Hostname(), nil
}

func GetBaseUrl(url string) (string, error) {
	parsedUrl, err := u.Parse(url)
	if err != nil {
		return "", err
	}
	if parsedUrl.Scheme == "" || parsedUrl.Hostname() == "" {
		return "", errors.New("invalid url. Url should contain scheme and hostname")
	}

	return parsedUrl.Scheme + "://" + parsedUrl.Host, nil
}

// SitemapUrl resolves the sitemap file against the base url. An absolute file url is returned as is.
func SitemapUrl(baseUrl, file string) (string, error) {
	if file == "" {
		return "", errors.New("sitemap file is empty")
	}
	parsedFile, err := u.Parse(file)
	if err != nil {
		return "", err
	}
	if parsedFile.IsAbs() {
		return parsedFile.String(), nil
	}
	base, err := u.Parse(strings.TrimSuffix(baseUrl, "/") + "/")
	if err != nil {
		return "", err
	}
	if base.Scheme == "" || base.Hostname() == "" {
		return "", errors.New("invalid base url. Url should contain scheme and hostname")
	}

	return base.ResolveReference(&u.URL{Path: "/" + strings.TrimPrefix(parsedFile.Path, "/"),
		RawQuery: parsedFile.RawQuery}).String(), nil
}
