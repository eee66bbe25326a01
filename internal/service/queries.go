package service

// GraphQLクエリ
// 値はすべて variables で渡す
const (
	listBoardsQuery = `query {
  boards {
    id
    name
    description
    state
    board_kind
    updated_at
  }
}`

	boardStructureQuery = `query ($boardIds: [ID!]) {
  boards(ids: $boardIds) {
    columns {
      id
      title
      type
      settings_str
    }
    groups {
      id
      title
      color
      position
    }
  }
}`

	itemsByBoardQuery = `query ($boardIds: [ID!]) {
  boards(ids: $boardIds) {
    name
    items {
      id
      name
      state
      column_values {
        id
        title
        text
        value
      }
      created_at
      updated_at
    }
  }
}`

	itemsByColumnQuery = `query ($boardIds: [ID!], $columnIds: [String!]) {
  boards(ids: $boardIds) {
    items {
      id
      name
      column_values(ids: $columnIds) {
        text
      }
      created_at
      updated_at
    }
  }
}`

	overdueItemsQuery = `query {
  items_by_column_values(board_id: ALL_BOARDS, column_id: "date", column_value: "overdue") {
    id
    name
    board {
      id
      name
    }
    column_values {
      title
      text
    }
  }
}`

	userDetailsQuery = `query ($userIds: [ID!]) {
  users(ids: $userIds) {
    id
    name
    email
    title
    photo_thumb
    created_at
  }
}`

	userWorkloadQuery = `query ($personId: ID!) {
  items_by_person_id(person_id: $personId) {
    id
    name
    board {
      id
      name
    }
    column_values {
      id
      title
      text
    }
  }
}`

	createItemMutation = `mutation ($boardId: ID!, $groupId: String, $itemName: String!, $columnValues: JSON) {
  create_item(board_id: $boardId, group_id: $groupId, item_name: $itemName, column_values: $columnValues) {
    id
    name
  }
}`

	changeColumnValueMutation = `mutation ($itemId: ID!, $columnId: String!, $value: JSON!) {
  change_column_value(item_id: $itemId, column_id: $columnId, value: $value) {
    id
    name
  }
}`

	createUpdateMutation = `mutation ($itemId: ID!, $body: String!) {
  create_update(item_id: $itemId, body: $body) {
    id
    text
  }
}`
)
