// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

All JSON uses camelCase keys. Domain types also carry db tags for sqlx.

# Request Types

  - SignUpRequest, SignUpOwnerRequest, LoginRequest
  - FavoriteRequest: houseId
  - VerifyRequest: verificationStatus (pointer, so absence is detectable)

# Response Types

  - SignUpResponse, LoginResponse, MeResponse (with Profile)
  - SubmitHouseResponse: houseId, imagesStored, imagesSkipped
  - FavoriteResponse, VerifyResponse, AdminStats
  - ErrorResponse: error

# Domain Types

  - User, HouseOwner, Admin: accounts; password hashes never serialize
  - Region: a location shared by houses at the same address
  - House: a listing with its Region, image references, and optional owner
  - HouseImage: stored image bytes
  - NewHouse, NewImage: a validated submission on its way to the store
*/
package models
