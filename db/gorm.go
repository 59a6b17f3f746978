package db

import (
	"fmt"
	"net"
	"time"

	"songshelf/config"
	"songshelf/logger"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DSN builds the MySQL data source name from the configuration.
func DSN(cfg *config.Config) string {
	mc := mysqldriver.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// ConnectGormDB 建立 GORM 数据库连接并配置连接池
func ConnectGormDB(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database with GORM: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Info("Connected to MySQL with GORM",
		logger.String("addr", net.JoinHostPort(cfg.DBHost, cfg.DBPort)),
		logger.String("database", cfg.DBName))
	return gdb, nil
}

// CloseGormDB 关闭 GORM 数据库连接
func CloseGormDB(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrateModels 自动迁移指定的模型
func AutoMigrateModels(gdb *gorm.DB, models ...interface{}) error {
	if gdb == nil {
		return fmt.Errorf("GORM database not initialized")
	}
	if err := gdb.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	logger.Info("Models migrated with GORM", logger.Int("count", len(models)))
	return nil
}
