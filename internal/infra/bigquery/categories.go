package bigquery

import "github.com/dvloznov/hikmacash/internal/domain"

// CategoryRow is a row of the categories table.
type CategoryRow struct {
	ID     string `bigquery:"id"`
	UserID string `bigquery:"user_id"`
	Name   string `bigquery:"name"`
	Type   string `bigquery:"type"`
}

type categoryParam struct {
	ID   string `bigquery:"id"`
	Seq  int64  `bigquery:"seq"`
	Name string `bigquery:"name"`
	Type string `bigquery:"type"`
}

func toCategoryParams(cats []domain.Category) []categoryParam {
	params := make([]categoryParam, 0, len(cats))
	for i, c := range cats {
		params = append(params, categoryParam{ID: c.ID, Seq: int64(i), Name: c.Name, Type: string(c.Type)})
	}
	return params
}

func (r CategoryRow) toDomain() domain.Category {
	return domain.Category{ID: r.ID, UserID: r.UserID, Name: r.Name, Type: domain.Kind(r.Type)}
}
