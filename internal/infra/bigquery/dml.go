package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// runDML runs a statement or script and waits for the job to finish.
func runDML(ctx context.Context, client *bigquery.Client, sql string, params []bigquery.QueryParameter) error {
	q := client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}

	return nil
}

// replaceScript deletes a user's rows from table and inserts the @rows array
// in one transaction. Any error rolls back and is re-raised to the caller.
func replaceScript(table string, insertColumns, selectExprs string) string {
	return fmt.Sprintf(`
BEGIN
  BEGIN TRANSACTION;
  DELETE FROM %[1]s WHERE user_id = @user_id;
  INSERT INTO %[1]s (%[2]s)
  SELECT %[3]s
  FROM UNNEST(@rows) AS r;
  COMMIT TRANSACTION;
EXCEPTION WHEN ERROR THEN
  ROLLBACK TRANSACTION;
  RAISE USING MESSAGE = @@error.message;
END;`, table, insertColumns, selectExprs)
}
