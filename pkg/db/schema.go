package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- One row per CLI invocation that touched the network
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    command TEXT NOT NULL,             -- search, generate, detect, sheets-generate
    failed_queries INTEGER DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Ranked search results kept by a run
CREATE TABLE IF NOT EXISTS search_results (
    result_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    query_set TEXT NOT NULL,           -- queries joined with " | "
    url TEXT NOT NULL,
    score REAL NOT NULL,
    is_documentation BOOLEAN DEFAULT 0,
    position INTEGER NOT NULL,         -- 0-based rank within the run
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_search_results_run ON search_results(run_id);
CREATE INDEX IF NOT EXISTS idx_search_results_url ON search_results(url);

-- Integration generation outcomes
CREATE TABLE IF NOT EXISTS integrations (
    integration_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    service_name TEXT NOT NULL,
    integration_type TEXT NOT NULL,
    status TEXT NOT NULL,              -- success, error
    output_dir TEXT,
    error TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_integrations_run ON integrations(run_id);
CREATE INDEX IF NOT EXISTS idx_integrations_service ON integrations(service_name);

-- Integration type classifications
CREATE TABLE IF NOT EXISTS type_detections (
    detection_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    service_name TEXT NOT NULL,
    action TEXT,
    detected_type TEXT,
    sheet_row INTEGER,                 -- spreadsheet row when run in batch mode
    error TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_type_detections_run ON type_detections(run_id);
`
