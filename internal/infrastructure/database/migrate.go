package database

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
)

// auditedTables get the audit_table_changes trigger
var auditedTables = []string{"transactions", "donations", "enrollments"}

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	logger.Info("Running GORM auto-migrations...")
	err := db.AutoMigrate(
		&model.Course{},
		&model.PromoCode{},
		&model.Transaction{},
		&model.Donation{},
		&model.Enrollment{},
		&model.PaymentEvent{},
		&model.AuditLog{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}
	logger.Info("GORM auto-migrations completed successfully")

	logger.Info("Creating status constraints...")
	if err := createStatusConstraints(db); err != nil {
		logger.Error("Failed to create status constraints", zap.Error(err))
		return err
	}

	logger.Info("Creating custom indexes...")
	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}
	logger.Info("Custom indexes created successfully")

	logger.Info("Creating database functions...")
	if err := createDatabaseFunctions(db, logger); err != nil {
		logger.Error("Failed to create database functions", zap.Error(err))
		return err
	}
	logger.Info("Database functions created successfully")

	logger.Info("Database migrations completed successfully")
	return nil
}

// createStatusConstraints keeps the status columns inside the closed enum
func createStatusConstraints(db *gorm.DB) error {
	statuses := make([]string, 0, len(model.AllTransactionStatuses))
	for _, s := range model.AllTransactionStatuses {
		statuses = append(statuses, "'"+string(s)+"'")
	}
	allowed := strings.Join(statuses, ", ")

	for _, table := range []string{"transactions", "donations"} {
		constraint := fmt.Sprintf("chk_%s_status", table)
		sql := fmt.Sprintf(`
DO $$
BEGIN
    IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
        ALTER TABLE %s ADD CONSTRAINT %s CHECK (status IN (%s));
    END IF;
END
$$;`, constraint, table, constraint, allowed)
		if err := db.Exec(sql).Error; err != nil {
			return err
		}
	}
	return nil
}

// createCustomIndexes creates custom indexes that GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	// The pending sweeper scans these
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_transactions_pending_created ON transactions (created_at) WHERE status = 'pending'`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_donations_pending_created ON donations (created_at) WHERE status = 'pending'`).Error; err != nil {
		return err
	}
	return nil
}

// createDatabaseFunctions creates the audit trigger and its session helper
func createDatabaseFunctions(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Creating audit trigger function...")
	auditFunctionSQL := `
CREATE OR REPLACE FUNCTION audit_table_changes() RETURNS TRIGGER AS $$
DECLARE
    current_user_id BIGINT;
    v_user_id BIGINT;
    v_record_id BIGINT;
BEGIN
    -- Try to get user_id context from session
    BEGIN
        current_user_id := (current_setting('app.current_user_id', true))::BIGINT;
    EXCEPTION WHEN OTHERS THEN
        current_user_id := NULL;
    END;

    IF TG_OP = 'DELETE' THEN
        v_record_id := OLD.id;
    ELSE
        v_record_id := NEW.id;
    END IF;

    -- Fall back to the row's own user_id
    IF current_user_id IS NULL THEN
        BEGIN
            IF TG_OP = 'DELETE' THEN
                EXECUTE 'SELECT ($1).user_id' INTO v_user_id USING OLD;
            ELSE
                EXECUTE 'SELECT ($1).user_id' INTO v_user_id USING NEW;
            END IF;
        EXCEPTION WHEN OTHERS THEN
            v_user_id := NULL;
        END;
        current_user_id := v_user_id;
    END IF;

    IF TG_OP = 'DELETE' THEN
        INSERT INTO audit_log (user_id, action, table_name, record_id, old_values, ip_address)
        VALUES (current_user_id, 'DELETE', TG_TABLE_NAME, v_record_id, to_jsonb(OLD), inet_client_addr());
        RETURN OLD;
    ELSIF TG_OP = 'UPDATE' THEN
        INSERT INTO audit_log (user_id, action, table_name, record_id, old_values, new_values, ip_address)
        VALUES (current_user_id, 'UPDATE', TG_TABLE_NAME, v_record_id, to_jsonb(OLD), to_jsonb(NEW), inet_client_addr());
        RETURN NEW;
    ELSIF TG_OP = 'INSERT' THEN
        INSERT INTO audit_log (user_id, action, table_name, record_id, new_values, ip_address)
        VALUES (current_user_id, 'INSERT', TG_TABLE_NAME, v_record_id, to_jsonb(NEW), inet_client_addr());
        RETURN NEW;
    END IF;
    RETURN NULL;
END;
$$ LANGUAGE plpgsql SECURITY DEFINER;`

	if err := db.Exec(auditFunctionSQL).Error; err != nil {
		logger.Error("Failed to create audit trigger function", zap.Error(err))
		return err
	}

	for _, table := range auditedTables {
		dropSQL := fmt.Sprintf(`DROP TRIGGER IF EXISTS audit_%s ON %s;`, table, table)
		if err := db.Exec(dropSQL).Error; err != nil {
			logger.Warn("Failed to drop existing trigger", zap.String("table", table), zap.Error(err))
		}

		triggerSQL := fmt.Sprintf(`
CREATE TRIGGER audit_%s
    AFTER INSERT OR UPDATE OR DELETE ON %s
    FOR EACH ROW EXECUTE FUNCTION audit_table_changes();`, table, table)
		if err := db.Exec(triggerSQL).Error; err != nil {
			logger.Error("Failed to create audit trigger", zap.String("table", table), zap.Error(err))
			return err
		}
		logger.Info("Created audit trigger", zap.String("table", table))
	}

	setUserIDContextSQL := `
CREATE OR REPLACE FUNCTION set_user_id_context(user_id BIGINT)
RETURNS VOID AS $$
BEGIN
    PERFORM set_config('app.current_user_id', user_id::TEXT, true);
END;
$$ LANGUAGE plpgsql SECURITY DEFINER;`

	if err := db.Exec(setUserIDContextSQL).Error; err != nil {
		logger.Error("Failed to create set_user_id_context function", zap.Error(err))
		return err
	}

	return nil
}
