package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Mailbox struct {
	Name      string
	QuotaUsed []string
}

type ListResponse struct {
	Data    []Mailbox
	Status  string
	Command string
}

// Wire shapes use pointers so that absent fields can be told apart from
// empty ones.
type listUsersResponse struct {
	Data    *[]listUser `json:"data"`
	Status  *string     `json:"status"`
	Command string      `json:"command"`
}

type listUser struct {
	Name   *string         `json:"name"`
	Values *listUserValues `json:"values"`
}

type listUserValues struct {
	HomeByteQuotaUsed *[]string `json:"home_byte_quota_used"`
}

func parseMailboxList(body string) (*ListResponse, error) {
	var wire listUsersResponse
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	switch {
	case wire.Data == nil:
		return nil, fmt.Errorf("%w: missing field %q", ErrParse, "data")
	case wire.Status == nil:
		return nil, fmt.Errorf("%w: missing field %q", ErrParse, "status")
	}

	resp := &ListResponse{
		Data:    make([]Mailbox, 0, len(*wire.Data)),
		Status:  *wire.Status,
		Command: wire.Command,
	}

	for i, u := range *wire.Data {
		switch {
		case u.Name == nil:
			return nil, fmt.Errorf("%w: data[%d]: missing field %q", ErrParse, i, "name")
		case u.Values == nil:
			return nil, fmt.Errorf("%w: data[%d]: missing field %q", ErrParse, i, "values")
		case u.Values.HomeByteQuotaUsed == nil:
			return nil, fmt.Errorf("%w: data[%d]: missing field %q", ErrParse, i, "values.home_byte_quota_used")
		}

		resp.Data = append(resp.Data, Mailbox{
			Name:      *u.Name,
			QuotaUsed: *u.Values.HomeByteQuotaUsed,
		})
	}

	return resp, nil
}

// usedBytes returns the first reported quota value.
func (m Mailbox) usedBytes() (uint64, error) {
	if len(m.QuotaUsed) == 0 {
		return 0, &QuotaError{Mailbox: m.Name, Err: errNoQuota}
	}

	n, err := strconv.ParseUint(strings.TrimSpace(m.QuotaUsed[0]), 10, 64)
	if err != nil {
		return 0, &QuotaError{Mailbox: m.Name, Err: err}
	}

	return n, nil
}
