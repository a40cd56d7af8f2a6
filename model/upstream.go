package model

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// UpstreamTarget is the network destination of a single proxied request
type UpstreamTarget struct {
	Scheme string
	Host   string
	Port   string
	// Path is a base path, only set for plugin service URLs that carry one
	Path string
	// User and RawQuery are carried over from plugin service URLs
	User     *url.Userinfo
	RawQuery string
}

// ParseUpstream parses a literal service URL into a target
func ParseUpstream(raw string) (*UpstreamTarget, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, err)
	}
	t := &UpstreamTarget{
		Scheme:   u.Scheme,
		Host:     u.Hostname(),
		Port:     u.Port(),
		Path:     u.Path,
		User:     u.User,
		RawQuery: u.RawQuery,
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%q: %w", raw, err)
	}
	return t, nil
}

// Validate ensures the target can be dialed
func (t *UpstreamTarget) Validate() error {
	if t == nil {
		return errors.New("upstream is not set")
	}
	if t.Scheme != "http" && t.Scheme != "https" {
		return fmt.Errorf("unsupported upstream scheme %q", t.Scheme)
	}
	if t.Host == "" {
		return errors.New("upstream host is empty")
	}
	return nil
}

// HostPort returns host[:port], IPv6 hosts are always bracketed
func (t *UpstreamTarget) HostPort() string {
	if t.Port != "" {
		return net.JoinHostPort(t.Host, t.Port)
	}
	if strings.Contains(t.Host, ":") {
		return "[" + t.Host + "]"
	}
	return t.Host
}

// URL returns the target as an URL
func (t *UpstreamTarget) URL() *url.URL {
	return &url.URL{
		Scheme:   t.Scheme,
		User:     t.User,
		Host:     t.HostPort(),
		Path:     t.Path,
		RawQuery: t.RawQuery,
	}
}

func (t *UpstreamTarget) String() string {
	return t.URL().String()
}
