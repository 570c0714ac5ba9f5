package gateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/naka-gawa/trendy-repos/internal/domain"
)

// repoItem mirrors the subset of a search result item we read.
// Pointers let us tell a missing or null field apart from a zero value.
type repoItem struct {
	Name            *string    `json:"name"`
	Description     *string    `json:"description"`
	Owner           *ownerItem `json:"owner"`
	StargazersCount *int       `json:"stargazers_count"`
}

type ownerItem struct {
	Login     *string `json:"login"`
	AvatarURL *string `json:"avatar_url"`
}

type searchResponse struct {
	Items []json.RawMessage `json:"items"`
}

// DecodeSearchResponse decodes the body of a repository search response.
// A missing or null "items" field is an error; one bad item fails the whole page.
func DecodeSearchResponse(body []byte) ([]domain.Repo, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &DecodeError{Index: -1, Err: err}
	}
	if resp.Items == nil {
		return nil, &DecodeError{Index: -1, Field: "items", Err: errMissing}
	}

	repos := make([]domain.Repo, 0, len(resp.Items))
	for i, raw := range resp.Items {
		repo, err := DecodeRepo(raw)
		if err != nil {
			var decErr *DecodeError
			if errors.As(err, &decErr) {
				decErr.Index = i
			}
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

// DecodeRepo decodes a single repository object.
func DecodeRepo(data []byte) (domain.Repo, error) {
	var item repoItem
	if err := json.Unmarshal(data, &item); err != nil {
		field := ""
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field = typeErr.Field
		}
		return domain.Repo{}, &DecodeError{Index: -1, Field: field, Err: err}
	}

	switch {
	case item.Name == nil:
		return domain.Repo{}, missingField("name")
	case *item.Name == "":
		return domain.Repo{}, &DecodeError{Index: -1, Field: "name", Err: errors.New("empty")}
	case item.Owner == nil:
		return domain.Repo{}, missingField("owner")
	case item.Owner.Login == nil:
		return domain.Repo{}, missingField("owner.login")
	case item.Owner.AvatarURL == nil:
		return domain.Repo{}, missingField("owner.avatar_url")
	case item.StargazersCount == nil:
		return domain.Repo{}, missingField("stargazers_count")
	case *item.StargazersCount < 0:
		return domain.Repo{}, &DecodeError{Index: -1, Field: "stargazers_count", Err: fmt.Errorf("negative value %d", *item.StargazersCount)}
	}

	description := ""
	if item.Description != nil {
		description = *item.Description
	}

	return domain.Repo{
		Name:        *item.Name,
		Description: description,
		Author:      *item.Owner.Login,
		AvatarURL:   *item.Owner.AvatarURL,
		StarsCount:  *item.StargazersCount,
	}, nil
}

func missingField(field string) error {
	return &DecodeError{Index: -1, Field: field, Err: errMissing}
}
