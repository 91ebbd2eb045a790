// Copyright 2026 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"gorm.io/gorm"
)

const dataTablePrefix = "t_"

// Database defines record-store configuration.
//
// Driver selects the backend: sqlite for single-node deployments, mysql when the
// run store is shared between replicas.
type Database struct {
	Driver          string       `mapstructure:"driver"`
	OutPut          bool         `mapstructure:"output"` // log SQL statements
	MaxIdleConns    int          `mapstructure:"maxIdleConns"`
	MaxOpenConns    int          `mapstructure:"maxOpenConns"`
	ConnMaxLifetime int          `mapstructure:"connMaxLifetime"` // minutes
	MySQL           MySQLConfig  `mapstructure:"mysql"`
	SQLite          SQLiteConfig `mapstructure:"sqlite"`
}

type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbName"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

func (d *Database) SetDefaults() {
	if d.Driver == "" {
		d.Driver = "sqlite"
	}
	if d.SQLite.Path == "" {
		d.SQLite.Path = "./data/caseforge.db"
	}
	if d.MaxIdleConns <= 0 {
		d.MaxIdleConns = 10
	}
	if d.MaxOpenConns <= 0 {
		d.MaxOpenConns = 50
	}
	if d.ConnMaxLifetime <= 0 {
		d.ConnMaxLifetime = 60
	}
}

// IDatabase narrows the manager surface handed to repositories.
type IDatabase interface {
	Database() *gorm.DB
}

type databaseAdapter struct {
	manager Manager
}

func (a *databaseAdapter) Database() *gorm.DB {
	return a.manager.DB()
}

// NewDatabaseAdapter adapts a Manager to the IDatabase interface.
func NewDatabaseAdapter(manager Manager) IDatabase {
	return &databaseAdapter{manager: manager}
}
