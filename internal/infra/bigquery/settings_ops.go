package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/hikmacash/internal/domain"
	"google.golang.org/api/iterator"
)

const settingsTable = "enterprise_settings"

type enterpriseSettingRow struct {
	UserID string `bigquery:"user_id"`
	Name   string `bigquery:"enterprise_name"`
}

func upsertEnterpriseSettingSQL(ds Dataset) string {
	return `
		MERGE ` + ds.Table(settingsTable) + ` t
		USING (SELECT @user_id AS user_id, @enterprise_name AS enterprise_name) s
		ON t.user_id = s.user_id
		WHEN MATCHED THEN
		  UPDATE SET enterprise_name = s.enterprise_name, updated_at = CURRENT_TIMESTAMP()
		WHEN NOT MATCHED THEN
		  INSERT (user_id, enterprise_name, updated_at)
		  VALUES (s.user_id, s.enterprise_name, CURRENT_TIMESTAMP())`
}

// GetEnterpriseSettingWithClient returns nil when the user has no setting.
func GetEnterpriseSettingWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, userID string) (*domain.EnterpriseSetting, error) {
	q := client.Query(`
		SELECT user_id, enterprise_name
		FROM ` + ds.Table(settingsTable) + `
		WHERE user_id = @user_id
		ORDER BY updated_at DESC
		LIMIT 1`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetEnterpriseSetting: query read: %w", err)
	}

	var r enterpriseSettingRow
	err = it.Next(&r)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetEnterpriseSetting: iter next: %w", err)
	}
	return &domain.EnterpriseSetting{UserID: r.UserID, Name: r.Name}, nil
}

// UpsertEnterpriseSettingWithClient creates or overwrites the user's setting.
func UpsertEnterpriseSettingWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, setting domain.EnterpriseSetting) error {
	params := []bigquery.QueryParameter{
		{Name: "user_id", Value: setting.UserID},
		{Name: "enterprise_name", Value: setting.Name},
	}
	if err := runDML(ctx, client, upsertEnterpriseSettingSQL(ds), params); err != nil {
		return fmt.Errorf("UpsertEnterpriseSetting: %w", err)
	}
	return nil
}
