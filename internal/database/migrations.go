package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"backend/internal/logger"
)

// RunMigrations applies every statement in order. Each one is idempotent so
// the full list runs on every start.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	log := logger.Get()

	migrations := []string{
		createUsersTable,
		createStatesTable,
		createCitiesTable,
		createDevelopersTable,
		createAmenitiesTable,
		createProjectsTable,
		createFloorPlansTable,
		createLotsTable,
		createLotFloorPlansTable,
		createRenderingsTable,
		createDocumentsTable,
		createFeatureFinishesTable,
		createContactsTable,
		createSitePlansTable,
		createProjectAmenitiesTable,
		createTestimonialsTable,
		createProjectInquiriesTable,
	}

	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Info("migrations completed", zap.Int("count", len(migrations)))
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name VARCHAR(30) NOT NULL DEFAULT '',
  last_name VARCHAR(30) NOT NULL DEFAULT '',
  phone VARCHAR(17) NOT NULL DEFAULT '',
  user_type VARCHAR(20) NOT NULL DEFAULT 'agent',
  is_verified BOOLEAN NOT NULL DEFAULT FALSE,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  last_login_at TIMESTAMP WITH TIME ZONE
);

ALTER TABLE users ADD COLUMN IF NOT EXISTS is_verified BOOLEAN NOT NULL DEFAULT FALSE;
ALTER TABLE users ADD COLUMN IF NOT EXISTS is_active BOOLEAN NOT NULL DEFAULT TRUE;

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`

const createStatesTable = `
CREATE TABLE IF NOT EXISTS states (
  id BIGSERIAL PRIMARY KEY,
  name VARCHAR(100) NOT NULL,
  abbreviation VARCHAR(2) NOT NULL,
  slug VARCHAR(120) UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const createCitiesTable = `
CREATE TABLE IF NOT EXISTS cities (
  id BIGSERIAL PRIMARY KEY,
  name VARCHAR(100) NOT NULL,
  slug VARCHAR(120) UNIQUE,
  state_id BIGINT NOT NULL REFERENCES states(id) ON DELETE CASCADE,
  description TEXT NOT NULL DEFAULT '',
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_cities_state_id ON cities(state_id);
`

const createDevelopersTable = `
CREATE TABLE IF NOT EXISTS developers (
  id BIGSERIAL PRIMARY KEY,
  name VARCHAR(200) NOT NULL,
  slug VARCHAR(220) UNIQUE,
  email VARCHAR(254) NOT NULL DEFAULT '',
  phone VARCHAR(30) NOT NULL DEFAULT '',
  website VARCHAR(200) NOT NULL DEFAULT '',
  details TEXT NOT NULL DEFAULT '',
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const createAmenitiesTable = `
CREATE TABLE IF NOT EXISTS amenities (
  id BIGSERIAL PRIMARY KEY,
  name VARCHAR(100) NOT NULL UNIQUE,
  category VARCHAR(30) NOT NULL DEFAULT 'Other',
  icon VARCHAR(50) NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const createProjectsTable = `
CREATE TABLE IF NOT EXISTS projects (
  id BIGSERIAL PRIMARY KEY,
  name VARCHAR(200) NOT NULL,
  slug VARCHAR(220) UNIQUE,
  project_type VARCHAR(30) NOT NULL DEFAULT 'Single Family',
  status VARCHAR(30) NOT NULL DEFAULT 'Planning',
  project_address VARCHAR(200) NOT NULL DEFAULT '',
  price_starting_from NUMERIC(12, 2),
  price_ending_at NUMERIC(12, 2),
  project_description TEXT NOT NULL DEFAULT '',
  project_video_url TEXT NOT NULL DEFAULT '',
  area_square_footage NUMERIC(12, 2),
  lot_size NUMERIC(12, 2),
  garage_spaces INTEGER,
  bedrooms INTEGER,
  bathrooms NUMERIC(4, 1),
  is_featured BOOLEAN NOT NULL DEFAULT FALSE,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  city_id BIGINT NOT NULL REFERENCES cities(id) ON DELETE RESTRICT,
  developer_id BIGINT REFERENCES developers(id) ON DELETE SET NULL,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_projects_city_id ON projects(city_id);
CREATE INDEX IF NOT EXISTS idx_projects_featured ON projects(is_featured) WHERE is_active;
`

const createFloorPlansTable = `
CREATE TABLE IF NOT EXISTS floor_plans (
  id BIGSERIAL PRIMARY KEY,
  project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  name VARCHAR(200) NOT NULL DEFAULT '',
  house_type VARCHAR(30) NOT NULL DEFAULT 'Single Family',
  availability_status VARCHAR(20) NOT NULL DEFAULT 'Available',
  square_footage INTEGER,
  bedrooms INTEGER,
  bathrooms NUMERIC(4, 1),
  garage_spaces INTEGER,
  price NUMERIC(12, 2),
  plan_file TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_floor_plans_project_id ON floor_plans(project_id);
`

const createLotsTable = `
CREATE TABLE IF NOT EXISTS lots (
  id BIGSERIAL PRIMARY KEY,
  project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  lot_number VARCHAR(50) NOT NULL,
  lot_numbers TEXT NOT NULL DEFAULT '',
  availability_status VARCHAR(20) NOT NULL DEFAULT 'Available',
  lot_size NUMERIC(12, 2),
  price NUMERIC(12, 2),
  lot_rendering TEXT NOT NULL DEFAULT '',
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_lots_project_id ON lots(project_id);
`

const createLotFloorPlansTable = `
CREATE TABLE IF NOT EXISTS lot_floor_plans (
  lot_id BIGINT NOT NULL REFERENCES lots(id) ON DELETE CASCADE,
  floor_plan_id BIGINT NOT NULL REFERENCES floor_plans(id) ON DELETE CASCADE,
  PRIMARY KEY (lot_id, floor_plan_id)
);
`

const createRenderingsTable = `
CREATE TABLE IF NOT EXISTS renderings (
  id BIGSERIAL PRIMARY KEY,
  project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  title VARCHAR(200) NOT NULL DEFAULT '',
  image TEXT NOT NULL,
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_renderings_project_id ON renderings(project_id);
`

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
  id BIGSERIAL PRIMARY KEY,
  project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  title VARCHAR(200) NOT NULL DEFAULT '',
  document_type VARCHAR(30) NOT NULL DEFAULT 'Document',
  document TEXT NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_documents_project_id ON documents(project_id);
`

const createFeatureFinishesTable = `
CREATE TABLE IF NOT EXISTS feature_finishes (
  id BIGSERIAL PRIMARY KEY,
  project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  title VARCHAR(200) NOT NULL DEFAULT '',
  image TEXT NOT NULL,
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_feature_finishes_project_id ON feature_finishes(project_id);
`

const createContactsTable = `
CREATE TABLE IF NOT EXISTS contacts (
  id BIGSERIAL PRIMARY KEY,
  project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  name VARCHAR(100) NOT NULL,
  email VARCHAR(254),
  phone VARCHAR(30),
  sort_order INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_contacts_project_id ON contacts(project_id);
`

const createSitePlansTable = `
CREATE TABLE IF NOT EXISTS site_plans (
  id BIGSERIAL PRIMARY KEY,
  project_id BIGINT NOT NULL UNIQUE REFERENCES projects(id) ON DELETE CASCADE,
  title VARCHAR(200) NOT NULL DEFAULT '',
  file TEXT NOT NULL DEFAULT '',
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const createProjectAmenitiesTable = `
CREATE TABLE IF NOT EXISTS project_amenities (
  project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  amenity_id BIGINT NOT NULL REFERENCES amenities(id) ON DELETE CASCADE,
  PRIMARY KEY (project_id, amenity_id)
);
`

const createTestimonialsTable = `
CREATE TABLE IF NOT EXISTS testimonials (
  id BIGSERIAL PRIMARY KEY,
  name VARCHAR(100) NOT NULL,
  testimonial TEXT NOT NULL,
  source VARCHAR(20) NOT NULL DEFAULT 'Google',
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const createProjectInquiriesTable = `
CREATE TABLE IF NOT EXISTS project_inquiries (
  id BIGSERIAL PRIMARY KEY,
  project_id BIGINT REFERENCES projects(id) ON DELETE SET NULL,
  name VARCHAR(100) NOT NULL,
  email VARCHAR(254) NOT NULL,
  phone VARCHAR(30) NOT NULL DEFAULT '',
  message TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`
