package mysql

const insertHotelsPrefix = "INSERT INTO hotels\n" +
	"  (hotel_id, city_code, name, address, rating, amenities, price, latitude, longitude, last_update, raw)\nVALUES "

// Re-inserting a known hotel_id refreshes it; concurrent pool top-ups for the
// same city collapse here.
const upsertHotelsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  city_code   = VALUES(city_code),\n" +
	"  name        = VALUES(name),\n" +
	"  address     = VALUES(address),\n" +
	"  rating      = VALUES(rating),\n" +
	"  amenities   = VALUES(amenities),\n" +
	"  price       = VALUES(price),\n" +
	"  latitude    = VALUES(latitude),\n" +
	"  longitude   = VALUES(longitude),\n" +
	"  last_update = COALESCE(VALUES(last_update), hotels.last_update),\n" +
	"  raw         = VALUES(raw),\n" +
	"  updated_at  = CURRENT_TIMESTAMP\n"

const insertTripSQL = `
INSERT INTO trips
  (owner_id, title, description, public, preferences, itinerary, enrichment, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const listHotelsByCitySQL = `
SELECT
  hotel_id,
  city_code,
  name,
  address,
  rating,
  amenities,
  price,
  latitude,
  longitude,
  last_update,
  raw
FROM hotels
WHERE city_code = ?
ORDER BY hotel_id
`

const getTripSQL = `
SELECT
  id,
  owner_id,
  title,
  description,
  public,
  preferences,
  itinerary,
  enrichment,
  created_at
FROM trips
WHERE id = ?
`

const listTripsByOwnerSQL = `
SELECT
  id,
  owner_id,
  title,
  description,
  public,
  preferences,
  itinerary,
  enrichment,
  created_at
FROM trips
WHERE owner_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`
