package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/hikmacash/internal/domain"
	"google.golang.org/api/iterator"
)

const categoriesTable = "categories"

func listCategoriesSQL(ds Dataset) string {
	return `
		SELECT id, user_id, name, type
		FROM ` + ds.Table(categoriesTable) + `
		WHERE user_id = @user_id
		ORDER BY seq, id`
}

func replaceCategoriesSQL(ds Dataset) string {
	return replaceScript(
		ds.Table(categoriesTable),
		"user_id, id, seq, name, type",
		"@user_id, r.id, r.seq, r.name, r.type",
	)
}

// ListCategoriesWithClient returns the user's categories in import order.
func ListCategoriesWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, userID string) ([]domain.Category, error) {
	q := client.Query(listCategoriesSQL(ds))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: query read: %w", err)
	}

	cats := []domain.Category{}
	for {
		var r CategoryRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCategories: iter next: %w", err)
		}
		cats = append(cats, r.toDomain())
	}

	return cats, nil
}

// ReplaceCategoriesWithClient swaps the user's categories for cats.
func ReplaceCategoriesWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, userID string, cats []domain.Category) error {
	params := []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "rows", Value: toCategoryParams(cats)},
	}
	if err := runDML(ctx, client, replaceCategoriesSQL(ds), params); err != nil {
		return fmt.Errorf("ReplaceCategories: %w", err)
	}
	return nil
}
