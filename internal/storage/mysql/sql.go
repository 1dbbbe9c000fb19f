package mysql

const upsertItemSQL = `
INSERT INTO catalog_items
  (tab, id, kind, title, location, region, category, rating, review_count,
   price_amount, currency, images, details, raw)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  kind         = VALUES(kind),
  title        = VALUES(title),
  location     = VALUES(location),
  region       = VALUES(region),
  category     = VALUES(category),
  rating       = VALUES(rating),
  review_count = VALUES(review_count),
  price_amount = VALUES(price_amount),
  currency     = VALUES(currency),
  images       = VALUES(images),
  details      = VALUES(details),
  raw          = COALESCE(VALUES(raw), catalog_items.raw),
  updated_at   = CURRENT_TIMESTAMP
`

const itemColumns = `tab, id, kind, title, location, region, category, rating, review_count, images, details`

const getItemSQL = `SELECT ` + itemColumns + ` FROM catalog_items WHERE tab = ? AND id = ?`

// Best rated first; title breaks ties so the order is stable.
const listByTabSQL = `SELECT ` + itemColumns + ` FROM catalog_items WHERE tab = ? ORDER BY rating DESC, title`

const insertBookingSQL = `
INSERT INTO booking_drafts
  (reference, tab, item_id, item_type, contact_name, contact_email, contact_phone,
   adults, children, date_from, date_to, status, external_ref, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const listBookingsSQL = `
SELECT reference, tab, item_id, item_type, contact_name, contact_email, contact_phone,
       adults, children, date_from, date_to, status, external_ref, created_at
FROM booking_drafts
ORDER BY created_at DESC, reference
LIMIT ? OFFSET ?
`

const insertMessageSQL = "INSERT INTO contact_messages (kind, name, email, phone, subject, `message`, created_at)\nVALUES (?, ?, ?, ?, ?, ?, ?)"

const listMessagesSQL = "SELECT id, kind, name, email, phone, subject, `message`, created_at\nFROM contact_messages\nORDER BY created_at DESC, id DESC\nLIMIT ? OFFSET ?"

const createMigrationsTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version    VARCHAR(128) NOT NULL PRIMARY KEY,
  applied_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
)
`
